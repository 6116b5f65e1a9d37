package universe

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTickerFile(t *testing.T, lines string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileAndBuiltins(t *testing.T) {
	path := writeTickerFile(t, "aapl\nMSFT\n\n  nvda  \n")
	u, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, sym := range []string{"AAPL", "MSFT", "NVDA", "SPY", "BTC", "EURUSD"} {
		if !u.Contains(sym) {
			t.Errorf("Expected %s in universe", sym)
		}
	}
	if u.Contains("ZZZZZZ") {
		t.Error("ZZZZZZ must not be in universe")
	}
}

func TestLoadMissingFileStillHasBuiltins(t *testing.T) {
	u, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !u.Contains("QQQ") {
		t.Error("Expected builtin QQQ with missing ticker file")
	}
}

func TestMacroAllowList(t *testing.T) {
	u, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if !u.IsMacro("GLD") || !u.IsMacro("TLT") {
		t.Error("Expected GLD and TLT on macro allow-list")
	}
	if u.IsMacro("AAPL") {
		t.Error("AAPL is not a macro ticker")
	}
	if !u.Known("USO") {
		t.Error("Macro ticker should be Known")
	}
}

func TestExtract(t *testing.T) {
	path := writeTickerFile(t, "AAPL\nTSLA\n")
	u, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		text string
		want []string
	}{
		{"dollar prefix", "Buying $AAPL on the dip", []string{"$AAPL"}},
		{"bare ticker", "TSLA deliveries beat estimates", []string{"$TSLA"}},
		{"index name", "S&P 500 hits record high", []string{"$SPY"}},
		{"unknown ignored", "XQZT is not a ticker", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := u.Extract(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tc.text, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("Extract(%q) = %v, want %v", tc.text, got, tc.want)
				}
			}
		})
	}
}
