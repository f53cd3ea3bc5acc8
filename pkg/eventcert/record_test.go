package eventcert

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestRecordLifecycle(t *testing.T) {
	r := NewRecord("e1", "p1")
	if r.Status != StatusPending || r.IssuedAt != nil {
		t.Fatalf("expected a fresh pending record, got %+v", r)
	}

	if err := r.RecordDownload(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected pending download to fail, got %v", err)
	}

	issued := time.Date(2026, time.January, 3, 10, 0, 0, 0, time.UTC)
	if err := r.MarkGenerated("CERT-2026-AAAAAAAAAA", issued, "certificates/e1/p1.pdf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Status != StatusGenerated || r.IssuedAt == nil || !r.IssuedAt.Equal(issued) {
		t.Fatalf("expected generated with issuedAt set, got %+v", r)
	}

	if err := r.MarkGenerated("CERT-2026-BBBBBBBBBB", issued.Add(time.Hour), ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected regenerate to fail, got %v", err)
	}
	if !r.IssuedAt.Equal(issued) || r.CertificateNumber != "CERT-2026-AAAAAAAAAA" {
		t.Errorf("expected issuedAt and number stable, got %+v", r)
	}

	if err := r.MarkSent(); err != nil || r.Status != StatusSent {
		t.Fatalf("expected sent, got %s %v", r.Status, err)
	}

	for i := 1; i <= 3; i++ {
		if err := r.RecordDownload(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.DownloadCount != int64(i) {
			t.Errorf("expected count %d, got %d", i, r.DownloadCount)
		}
		if r.Status != StatusDownloaded {
			t.Errorf("expected downloaded, got %s", r.Status)
		}
	}

	if err := r.MarkSent(); err != nil || r.Status != StatusDownloaded {
		t.Errorf("expected re-send to keep downloaded, got %s %v", r.Status, err)
	}
}

func TestRecordStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		apply   func(*Record) error
		want    Status
		wantErr bool
	}{
		{name: "Send pending", from: StatusPending, apply: (*Record).MarkSent, want: StatusPending, wantErr: true},
		{name: "Send generated", from: StatusGenerated, apply: (*Record).MarkSent, want: StatusSent},
		{name: "Download generated", from: StatusGenerated, apply: (*Record).RecordDownload, want: StatusGenerated},
		{name: "Download sent", from: StatusSent, apply: (*Record).RecordDownload, want: StatusDownloaded},
		{name: "Download downloaded", from: StatusDownloaded, apply: (*Record).RecordDownload, want: StatusDownloaded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{Status: tt.from}
			err := tt.apply(&r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, r.Status)
			}
		})
	}
}

func TestNumberGenerator(t *testing.T) {
	gen := NewNumberGenerator("GOM")
	issued := time.Date(2027, time.May, 1, 0, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^GOM-2027-[2-9A-HJ-NP-Z]{10}$`)

	seen := make(map[string]bool)
	for range 100 {
		n, err := gen(issued)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(n) {
			t.Errorf("unexpected number %q", n)
		}
		if seen[n] {
			t.Errorf("duplicate number %q", n)
		}
		seen[n] = true
	}
}
