package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseExplicitDates(t *testing.T) {
	cfg, err := Parse([]string{"-output", "r.csv", "-start", "2025-03-01", "-end", "2025-03-05", "-user", "Alice"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.User != "Alice" {
		t.Errorf("user = %q", cfg.User)
	}
	if got := cfg.StartDate.Format("2006-01-02"); got != "2025-03-01" {
		t.Errorf("start = %q", got)
	}
	if got := cfg.EndDate.Format("2006-01-02"); got != "2025-03-05" {
		t.Errorf("end = %q", got)
	}
}

func TestParseDefaultStartFromDays(t *testing.T) {
	// N дней, включая конечную дату: 3 дня до 2025-03-10 → 2025-03-08
	cfg, err := Parse([]string{"-output", "r.csv", "-end", "2025-03-10", "-days", "3"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := cfg.StartDate.Format("2006-01-02"); got != "2025-03-08" {
		t.Errorf("start = %q, want 2025-03-08", got)
	}
}

func TestParseDefaultEndIsToday(t *testing.T) {
	cfg, err := Parse([]string{"-output", "r.csv"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	y, m, d := time.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !cfg.EndDate.Equal(today) {
		t.Errorf("end = %v, want %v", cfg.EndDate, today)
	}
}

func TestParseInvertedRange(t *testing.T) {
	if _, err := Parse([]string{"-output", "r.csv", "-start", "2025-03-05", "-end", "2025-03-01"}); err == nil {
		t.Fatal("expected error for start after end")
	}
}

func TestParseBadDate(t *testing.T) {
	if _, err := Parse([]string{"-output", "r.csv", "-start", "05.03.2025"}); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestParseRequiresDestination(t *testing.T) {
	if _, err := Parse([]string{"-user", "Alice"}); err == nil {
		t.Fatal("expected error when neither -output nor ClickHouse is configured")
	}
}

func TestParseYAMLDefaultsAndFlagPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "LogDir: /srv/wg-logs\nLogPrefix: wg.log\nDays: 7\nClickHouse:\n  Address: ch:9000\n  Database: reports\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Parse([]string{"-config", path, "-end", "2025-03-10", "-log-prefix", "override.log"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.LogDir != "/srv/wg-logs" {
		t.Errorf("log dir = %q", cfg.LogDir)
	}
	// явный флаг сильнее значения из файла
	if cfg.LogPrefix != "override.log" {
		t.Errorf("log prefix = %q", cfg.LogPrefix)
	}
	// Days из файла участвует в вычислении начальной даты
	if got := cfg.StartDate.Format("2006-01-02"); got != "2025-03-04" {
		t.Errorf("start = %q, want 2025-03-04", got)
	}
	if cfg.ClickHouse.Address != "ch:9000" {
		t.Errorf("clickhouse address = %q", cfg.ClickHouse.Address)
	}
}

func TestLoadFileWithBOMAndTabs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("LogDir:\t/var/log\n")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if fc.LogDir != "/var/log" {
		t.Errorf("log dir = %q", fc.LogDir)
	}
}
