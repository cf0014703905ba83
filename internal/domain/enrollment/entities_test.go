package enrollment

import "testing"

func TestRecordStatus(t *testing.T) {
	cases := map[string]Status{
		"":         StatusPending,
		"pending":  StatusPending,
		"APPROVED": StatusApproved,
		" declined": StatusDeclined,
	}
	for raw, want := range cases {
		if got := (Record{EnrollmentStatus: raw}).Status(); got != want {
			t.Fatalf("Status(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestIsDecided(t *testing.T) {
	if IsDecided("PENDING") || IsDecided("") || IsDecided("WAITING") {
		t.Fatalf("pending or unknown must not count as decided")
	}
	if !IsDecided("approved") || !IsDecided("DECLINED") {
		t.Fatalf("approved/declined are decided")
	}
}
