package sequence

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/agbru/fibseq/internal/iterator"
)

// GoldenData represents the structure of our golden file entries.
type GoldenData struct {
	Kind   string `json:"kind"`
	N      uint64 `json:"n"`
	Result string `json:"result"`
}

func loadGolden(t *testing.T) []GoldenData {
	t.Helper()
	file, err := os.Open(filepath.Join("testdata", "sequence_golden.json"))
	if err != nil {
		t.Fatalf("Failed to open golden file: %v. Did you run 'go run ./cmd/generate-golden'?", err)
	}
	defer file.Close()

	var cases []GoldenData
	if err := json.NewDecoder(file).Decode(&cases); err != nil {
		t.Fatalf("Failed to decode golden file: %v", err)
	}
	return cases
}

// TestSequenceAgainstGoldenFile checks both the stepped stream and Skip
// against the golden terms.
func TestSequenceAgainstGoldenFile(t *testing.T) {
	t.Parallel()

	cases := loadGolden(t)
	factory := NewDefaultFactory()
	ctx := context.Background()

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/N=%d", tc.Kind, tc.N), func(t *testing.T) {
			t.Parallel()

			expected, ok := new(big.Int).SetString(tc.Result, 10)
			if !ok {
				t.Fatalf("bad golden value %q", tc.Result)
			}

			stepped, err := factory.Create(tc.Kind)
			if err != nil {
				t.Fatalf("Create(%q) error: %v", tc.Kind, err)
			}
			var got *big.Int
			for i := uint64(0); i <= tc.N; i++ {
				got, _ = iterator.Unpack(stepped.Advance())
			}
			if got.Cmp(expected) != 0 {
				t.Errorf("stepped mismatch for N=%d.\nExpected: %s\nGot:      %s", tc.N, expected, got)
			}

			jumped, _ := factory.Create(tc.Kind)
			if err := jumped.Skip(ctx, tc.N); err != nil {
				t.Fatalf("Skip(%d) error: %v", tc.N, err)
			}
			got, _ = iterator.Unpack(jumped.Advance())
			if got.Cmp(expected) != 0 {
				t.Errorf("Skip mismatch for N=%d.\nExpected: %s\nGot:      %s", tc.N, expected, got)
			}
		})
	}
}
