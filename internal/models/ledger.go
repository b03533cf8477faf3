package models

// Ledger is an insertion-ordered, read-only collection of transactions
type Ledger struct {
	txs []Transaction
}

// NewLedger copies txs into a new ledger
func NewLedger(txs []Transaction) *Ledger {
	cp := make([]Transaction, len(txs))
	copy(cp, txs)
	return &Ledger{txs: cp}
}

// Transactions returns a copy of the ledger rows in insertion order
func (l *Ledger) Transactions() []Transaction {
	if l == nil {
		return []Transaction{}
	}
	cp := make([]Transaction, len(l.txs))
	copy(cp, l.txs)
	return cp
}

// Len returns the number of rows
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.txs)
}
