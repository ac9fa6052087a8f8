package linkfix

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cardpress/cardpress/pkg/deck"
	"github.com/google/go-cmp/cmp"
)

func loadTestDeck(t *testing.T, csv string) *deck.Deck {
	t.Helper()
	d, err := deck.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return d
}

// stubStrategy returns a fixed resolution or error for every record.
type stubStrategy struct {
	name string
	res  Resolution
	err  error

	calls int
	seen  []string // links the strategy was handed
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(_ context.Context, rec deck.Record) (Resolution, error) {
	s.calls++
	s.seen = append(s.seen, rec.Link)
	return s.res, s.err
}

func TestChainStopsAtFirstValid(t *testing.T) {
	first := &stubStrategy{name: "first", res: Resolution{Status: StatusValid}}
	second := &stubStrategy{name: "second", res: Resolution{Status: StatusCorrected, Link: "x"}}

	f := NewWithStrategies(first, second)
	outcomes, err := f.Run(context.Background(), []deck.Record{{Link: "https://ok"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outcomes[0].Status != StatusValid || outcomes[0].Strategy != "first" {
		t.Errorf("outcome = %+v, want valid from first", outcomes[0])
	}
	if second.calls != 0 {
		t.Error("second strategy should not run after a valid verdict")
	}
}

func TestCorrectedLinkFeedsNextStrategy(t *testing.T) {
	fixer := &stubStrategy{name: "normalize", res: Resolution{Status: StatusCorrected, Link: "https://fixed"}}
	probe := &stubStrategy{name: "probe", res: Resolution{Status: StatusValid}}

	f := NewWithStrategies(fixer, probe)
	outcomes, err := f.Run(context.Background(), []deck.Record{{Link: "https://broken"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"https://fixed"}, probe.seen); diff != "" {
		t.Errorf("probe saw wrong links (-want +got):\n%s", diff)
	}
	// The probe confirming the fix keeps the record corrected, not valid.
	if outcomes[0].Status != StatusCorrected || outcomes[0].Link != "https://fixed" {
		t.Errorf("outcome = %+v, want corrected with fixed link", outcomes[0])
	}
}

func TestUnresolvedFallsThroughWholeChain(t *testing.T) {
	first := &stubStrategy{name: "first", res: Resolution{Status: StatusNotFound, Detail: "pass"}}
	second := &stubStrategy{name: "second", res: Resolution{Status: StatusNotFound, Detail: "no match"}}

	f := NewWithStrategies(first, second)
	outcomes, err := f.Run(context.Background(), []deck.Record{{Artist: "Unknown"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
	if outcomes[0].Status != StatusNotFound || outcomes[0].Detail != "no match" {
		t.Errorf("outcome = %+v, want not_found with last detail", outcomes[0])
	}
}

func TestStrategyErrorIsNotFatal(t *testing.T) {
	failing := &stubStrategy{name: "flaky", err: fmt.Errorf("boom")}
	rescue := &stubStrategy{name: "rescue", res: Resolution{Status: StatusCorrected, Link: "https://rescued"}}

	f := NewWithStrategies(failing, rescue)
	outcomes, err := f.Run(context.Background(), []deck.Record{{Link: "https://broken"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcomes[0].Status != StatusCorrected || outcomes[0].Link != "https://rescued" {
		t.Errorf("outcome = %+v, want correction despite earlier error", outcomes[0])
	}
}

func TestErrorOutcomeWhenNothingRescues(t *testing.T) {
	failing := &stubStrategy{name: "flaky", err: fmt.Errorf("boom")}

	f := NewWithStrategies(failing)
	outcomes, err := f.Run(context.Background(), []deck.Record{{Link: "https://broken"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcomes[0].Status != StatusError || outcomes[0].Strategy != "flaky" {
		t.Errorf("outcome = %+v, want error from flaky", outcomes[0])
	}
}

func TestRunHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewWithStrategies(&stubStrategy{name: "never", res: Resolution{Status: StatusValid}})
	_, err := f.Run(ctx, []deck.Record{{Link: "x"}})
	if err == nil {
		t.Fatal("Run should return the context error after cancellation")
	}
}

func TestApplyWritesCorrections(t *testing.T) {
	d := loadTestDeck(t, "Artist,Title,URL,Year\nNena,99 Luftballons,dead,\nToto,Africa,https://ok,1982\n")

	outcomes := []Outcome{
		{Index: 0, Status: StatusCorrected, Link: "https://fixed", Year: "1983"},
		{Index: 1, Status: StatusValid},
	}
	if changed := Apply(d, outcomes); changed != 1 {
		t.Errorf("Apply changed %d records, want 1", changed)
	}
	if d.Records[0].Link != "https://fixed" || d.Records[0].Year != "1983" {
		t.Errorf("record 0 = %+v, want corrected link and year", d.Records[0])
	}
	if d.Records[1].Link != "https://ok" {
		t.Errorf("record 1 link = %q, want untouched", d.Records[1].Link)
	}
}
