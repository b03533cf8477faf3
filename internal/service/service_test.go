package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const crunchCSV = `Date,Description,Amount,Type,Status
2023-01-01,Opening,1000,Inflow,Paid
2023-01-05,Globex,5000,Inflow,Pending
2023-01-10,Payroll,-4000,Outflow,Paid
2023-01-20,Cloud,-800,Outflow,Pending
2023-03-01,Acme,3000,Inflow,Pending
2023-03-02,Broken,abc,Inflow,Paid
`

type fakeNotifier struct {
	alerts []models.CrunchAlert
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, a models.CrunchAlert) error {
	f.alerts = append(f.alerts, a)
	return f.err
}

type fakeSource struct {
	header []string
	rows   [][]string
	err    error
	gotID  string
}

func (f *fakeSource) FetchTransactions(_ context.Context, accountID string) ([]string, [][]string, error) {
	f.gotID = accountID
	return f.header, f.rows, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultDelayDays:     30,
		DefaultTopN:          5,
		RiskHighBelow:        decimal.Zero,
		RiskLowFrom:          decimal.NewFromInt(5000),
		CrunchAlertThreshold: decimal.NewFromInt(1000),
	}
}

func newTestService(buf *bytes.Buffer, opts ...Option) *Service {
	log := logrus.New()
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	fixed := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return NewService(log, testConfig(), opts...)
}

func TestAnalyzeCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	notifier := &fakeNotifier{}
	svc := newTestService(buf, WithNotifier(notifier))

	a, err := svc.AnalyzeCSV(context.Background(), "upload.csv", strings.NewReader(crunchCSV), svc.DefaultParams())
	if err != nil {
		t.Fatalf("AnalyzeCSV() error = %v", err)
	}
	if a.Load == nil || a.Load.Dropped[ledger.DropBadAmount] != 1 {
		t.Errorf("expected one dropped row, got %+v", a.Load)
	}
	if a.Report.Transactions != 5 {
		t.Errorf("Transactions = %d, want 5", a.Report.Transactions)
	}
	if !strings.Contains(buf.String(), "Dropped 1 of 6 rows") {
		t.Errorf("expected dropped rows warning in log, got: %s", buf.String())
	}

	if len(notifier.alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(notifier.alerts))
	}
	alert := notifier.alerts[0]
	if alert.Source != "upload.csv" || !alert.LowestValue.Equal(decimal.NewFromInt(-3800)) {
		t.Errorf("unexpected alert %+v", alert)
	}
}

func TestAnalyzeCSV_NoAlertAboveThreshold(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(&bytes.Buffer{}, WithNotifier(notifier))

	csv := "Date,Description,Amount,Type,Status\n2023-01-01,Acme,5000,Inflow,Paid\n"
	if _, err := svc.AnalyzeCSV(context.Background(), "ok.csv", strings.NewReader(csv), svc.DefaultParams()); err != nil {
		t.Fatalf("AnalyzeCSV() error = %v", err)
	}
	if len(notifier.alerts) != 0 {
		t.Errorf("unexpected alerts %+v", notifier.alerts)
	}
}

func TestAnalyzeCSV_NotifierFailureDoesNotFail(t *testing.T) {
	buf := &bytes.Buffer{}
	svc := newTestService(buf, WithNotifier(&fakeNotifier{err: errors.New("smtp down")}))

	if _, err := svc.AnalyzeCSV(context.Background(), "upload.csv", strings.NewReader(crunchCSV), svc.DefaultParams()); err != nil {
		t.Fatalf("AnalyzeCSV() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Failed to deliver crunch alert") {
		t.Errorf("expected delivery failure in log")
	}
}

func TestAnalyzeCSV_Errors(t *testing.T) {
	svc := newTestService(&bytes.Buffer{})

	_, err := svc.AnalyzeCSV(context.Background(), "x", strings.NewReader("Date,Amount\n"), svc.DefaultParams())
	var loadErr *ledger.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected LoadError, got %v", err)
	}

	bad := Params{Scenario: models.Scenario{DelayDays: -1, Reality: true}, TopN: 5}
	if _, err := svc.AnalyzeCSV(context.Background(), "x", strings.NewReader(crunchCSV), bad); !errors.Is(err, models.ErrNegativeDelay) {
		t.Errorf("expected ErrNegativeDelay, got %v", err)
	}

	bad = Params{Scenario: models.Scenario{DelayDays: 10}, TopN: -1}
	if _, err := svc.AnalyzeCSV(context.Background(), "x", strings.NewReader(crunchCSV), bad); !errors.Is(err, ErrNegativeTopN) {
		t.Errorf("expected ErrNegativeTopN, got %v", err)
	}
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte(crunchCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	svc := newTestService(&bytes.Buffer{})

	a, err := svc.AnalyzeFile(context.Background(), path, svc.DefaultParams())
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if a.Source != path || a.Report.Transactions != 5 {
		t.Errorf("unexpected analysis %+v", a)
	}

	if _, err := svc.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), svc.DefaultParams()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAnalyzeSample(t *testing.T) {
	svc := newTestService(&bytes.Buffer{})

	a, err := svc.AnalyzeSample(context.Background(), 42, 50, svc.DefaultParams())
	if err != nil {
		t.Fatalf("AnalyzeSample() error = %v", err)
	}
	if a.Source != "sample:42" || a.Load != nil || a.Report.Transactions != 50 {
		t.Errorf("unexpected analysis: source=%s load=%v n=%d", a.Source, a.Load, a.Report.Transactions)
	}

	b, _ := svc.AnalyzeSample(context.Background(), 42, 50, svc.DefaultParams())
	if !a.Report.Metrics.Reality30Day.Equal(b.Report.Metrics.Reality30Day) {
		t.Error("same seed and clock must give the same report")
	}

	for _, rows := range []int{0, MaxSampleRows + 1} {
		if _, err := svc.AnalyzeSample(context.Background(), 1, rows, svc.DefaultParams()); !errors.Is(err, ErrInvalidSampleSize) {
			t.Errorf("rows=%d: expected ErrInvalidSampleSize, got %v", rows, err)
		}
	}
}

func TestAnalyzeAccount(t *testing.T) {
	svc := newTestService(&bytes.Buffer{})
	if _, err := svc.AnalyzeAccount(context.Background(), "42", svc.DefaultParams()); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}

	src := &fakeSource{
		header: []string{"Date", "Description", "Amount", "Type", "Status"},
		rows: [][]string{
			{"2023-01-01", "Acme", "3000", "Inflow", "Pending"},
			{"2023-01-02", "Beta", "1000", "Inflow", "Pending"},
			{"2023-01-03", "Acme", "2000", "Inflow", "Pending"},
		},
	}
	svc = newTestService(&bytes.Buffer{}, WithTransactionSource(src))

	a, err := svc.AnalyzeAccount(context.Background(), "42", svc.DefaultParams())
	if err != nil {
		t.Fatalf("AnalyzeAccount() error = %v", err)
	}
	if src.gotID != "42" || a.Source != "account:42" {
		t.Errorf("unexpected source %q / %q", src.gotID, a.Source)
	}
	top := a.Report.TopOffenders
	if len(top) != 2 || top[0].Customer != "Acme" || !top[0].LockedAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("TopOffenders = %+v", top)
	}

	src.err = errors.New("connection reset")
	if _, err := svc.AnalyzeAccount(context.Background(), "42", svc.DefaultParams()); err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected wrapped source error, got %v", err)
	}
}
