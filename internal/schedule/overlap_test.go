package schedule

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		want         bool
	}{
		{"identical", at(10, 0), at(10, 30), at(10, 0), at(10, 30), true},
		{"contained", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"partial", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"back to back", at(10, 0), at(10, 30), at(10, 30), at(11, 0), false},
		{"disjoint", at(9, 0), at(9, 30), at(11, 0), at(11, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Fatalf("Overlaps(a,b) = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Fatalf("Overlaps(b,a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlapsSymmetricGrid(t *testing.T) {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	step := 30 * time.Minute
	for as := 0; as < 6; as++ {
		for ae := as + 1; ae <= 6; ae++ {
			for bs := 0; bs < 6; bs++ {
				for be := bs + 1; be <= 6; be++ {
					a0, a1 := base.Add(time.Duration(as)*step), base.Add(time.Duration(ae)*step)
					b0, b1 := base.Add(time.Duration(bs)*step), base.Add(time.Duration(be)*step)
					if Overlaps(a0, a1, b0, b1) != Overlaps(b0, b1, a0, a1) {
						t.Fatalf("asymmetric for [%d,%d) vs [%d,%d)", as, ae, bs, be)
					}
				}
			}
		}
	}
}
