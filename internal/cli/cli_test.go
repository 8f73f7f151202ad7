package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/weekly/internal/config"
	"github.com/sadopc/weekly/internal/export"
	"github.com/sadopc/weekly/internal/logx"
	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/remote/server"
	"github.com/sadopc/weekly/internal/schedule"
)

// ─── helpers ─────────────────────────────────────────────────────────────────

// newTestConfig writes a config whose database and backups live in a temp dir.
func newTestConfig(t *testing.T, edit func(c *config.Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(dir, "weekly.db")
	cfg.Log.Level = "error"
	cfg.Backup.Dir = filepath.Join(dir, "backups")
	cfg.Server.DBPath = filepath.Join(dir, "remote.db")
	if edit != nil {
		edit(cfg)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("weekly %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// writeScheduleFile exports a one-task schedule to a JSON file.
func writeScheduleFile(t *testing.T, name, task string) string {
	t.Helper()
	sc := schedule.Schedule{
		Name: name,
		Tasks: []schedule.Task{{
			ID:        "t1",
			Name:      task,
			Color:     schedule.DefaultTaskColor,
			Days:      []schedule.Day{schedule.Monday, schedule.Wednesday},
			StartTime: "08:00",
			EndTime:   "09:30",
		}},
		Settings: schedule.DefaultSettings(),
	}
	path := filepath.Join(t.TempDir(), export.Slug(name)+".json")
	if err := export.ToJSON(sc, path); err != nil {
		t.Fatalf("write schedule file: %v", err)
	}
	return path
}

// ─── version ─────────────────────────────────────────────────────────────────

func TestVersion(t *testing.T) {
	out := mustRun(t, newTestConfig(t, nil), "version")
	if !strings.HasPrefix(out, "weekly ") {
		t.Errorf("version output = %q", out)
	}
}

// ─── import / export ─────────────────────────────────────────────────────────

func TestImportThenExport(t *testing.T) {
	cfg := newTestConfig(t, nil)

	out := mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))
	if !strings.Contains(out, `Imported "Fall" (1 tasks)`) {
		t.Errorf("import output = %q", out)
	}

	// State is persisted, so a fresh process sees the import.
	jsonOut := mustRun(t, cfg, "export")
	doc, err := export.ReadJSON(strings.NewReader(jsonOut))
	if err != nil {
		t.Fatalf("read exported json: %v", err)
	}
	if doc.Name != "Fall" || len(doc.Tasks) != 1 || doc.Tasks[0].Name != "Math" {
		t.Errorf("exported doc = %+v", doc)
	}

	csvOut := mustRun(t, cfg, "export", "--format", "csv")
	if !strings.Contains(csvOut, "Math") {
		t.Errorf("csv missing task:\n%s", csvOut)
	}

	icsOut := mustRun(t, cfg, "export", "-f", "ics")
	if !strings.Contains(icsOut, "BEGIN:VCALENDAR") || !strings.Contains(icsOut, "Math") {
		t.Errorf("ics output:\n%s", icsOut)
	}
}

func TestExportToFile(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))

	path := filepath.Join(t.TempDir(), "out.csv")
	out := mustRun(t, cfg, "export", "--format", "csv", "--out", path)
	if !strings.Contains(out, "Exported to "+path) {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Math") {
		t.Errorf("file missing task:\n%s", data)
	}
}

func TestExportBySchedule(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))
	mustRun(t, cfg, "import", writeScheduleFile(t, "Spring", "Art"))

	out := mustRun(t, cfg, "export", "--schedule", "fall")
	if !strings.Contains(out, "Math") || strings.Contains(out, "Art") {
		t.Errorf("expected only Fall:\n%s", out)
	}

	all := mustRun(t, cfg, "export", "-f", "csv", "--all")
	if !strings.Contains(all, "Math") || !strings.Contains(all, "Art") {
		t.Errorf("expected both schedules:\n%s", all)
	}

	if _, err := run(t, cfg, "export", "--schedule", "Winter"); err == nil {
		t.Error("expected error for unknown schedule")
	}
}

func TestExportErrors(t *testing.T) {
	cfg := newTestConfig(t, nil)

	if _, err := run(t, cfg, "export"); err != errNoSchedules {
		t.Errorf("export with no schedules: err = %v, want errNoSchedules", err)
	}
	if _, err := run(t, cfg, "export", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := run(t, cfg, "export", "--format", "json", "--all"); err == nil {
		t.Error("expected error for --all with json")
	}
}

func TestImportRejectsBadFile(t *testing.T) {
	cfg := newTestConfig(t, nil)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"name": ""}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, cfg, "import", path); err == nil {
		t.Error("expected error importing a nameless schedule")
	}
	if _, err := run(t, cfg, "import"); err == nil {
		t.Error("expected error without a file argument")
	}
}

// ─── schedules ───────────────────────────────────────────────────────────────

func TestSchedulesEmpty(t *testing.T) {
	out := mustRun(t, newTestConfig(t, nil), "schedules")
	if !strings.Contains(out, "No schedules yet.") {
		t.Errorf("output = %q", out)
	}
}

func TestSchedulesListAndUse(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))
	mustRun(t, cfg, "import", writeScheduleFile(t, "Spring", "Art"))

	out := mustRun(t, cfg, "ls")
	for _, want := range []string{"NAME", "Fall", "Spring", "local", "3.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, cfg, "schedules", "use", "Fall")
	if !strings.Contains(out, "Active schedule: Fall") {
		t.Errorf("use output = %q", out)
	}
	// The active schedule is the export default.
	if out := mustRun(t, cfg, "export"); !strings.Contains(out, `"name": "Fall"`) {
		t.Errorf("export after use:\n%s", out)
	}
}

func TestPickScheduleAmbiguous(t *testing.T) {
	cfg := newTestConfig(t, nil)
	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))
	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Art"))

	_, err := run(t, cfg, "schedules", "use", "fall")
	if err == nil || !strings.Contains(err.Error(), "use the id") {
		t.Errorf("err = %v, want ambiguity error", err)
	}
}

// ─── backup ──────────────────────────────────────────────────────────────────

func TestBackupListRestore(t *testing.T) {
	cfg := newTestConfig(t, nil)

	out := mustRun(t, cfg, "backup", "--list")
	if !strings.Contains(out, "No backups in") {
		t.Errorf("empty list output = %q", out)
	}

	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))
	mustRun(t, cfg, "import", writeScheduleFile(t, "Spring", "Art"))

	out = mustRun(t, cfg, "backup")
	if !strings.Contains(out, "Backup written to") {
		t.Fatalf("backup output = %q", out)
	}
	path := strings.TrimSpace(strings.TrimPrefix(out, "Backup written to"))

	out = mustRun(t, cfg, "backup", "-l")
	if strings.TrimSpace(out) != path {
		t.Errorf("list = %q, want %q", out, path)
	}

	// Restoring by bare file name resolves against backup.dir.
	out = mustRun(t, cfg, "backup", "restore", filepath.Base(path))
	if !strings.Contains(out, "Restored 2 schedules") {
		t.Errorf("restore output = %q", out)
	}
	list := mustRun(t, cfg, "schedules")
	if strings.Count(list, "Fall") != 2 || strings.Count(list, "Spring") != 2 {
		t.Errorf("expected restored copies alongside originals:\n%s", list)
	}
}

func TestRestoreMissingFile(t *testing.T) {
	cfg := newTestConfig(t, nil)
	if _, err := run(t, cfg, "backup", "restore", "nope.json"); err == nil {
		t.Error("expected error for missing backup")
	}
}

// ─── sync / serve ────────────────────────────────────────────────────────────

func TestSyncRequiresRemote(t *testing.T) {
	_, err := run(t, newTestConfig(t, nil), "sync")
	if err == nil || !strings.Contains(err.Error(), "remote.url") {
		t.Errorf("err = %v, want remote.url error", err)
	}
}

func TestSyncUploadsLocalSchedules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := remote.NewMemory()
	srv := httptest.NewServer(server.New(mem, map[string]string{"tok": "alice"}, logx.Nop()).Handler())
	t.Cleanup(srv.Close)

	cfg := newTestConfig(t, func(c *config.Config) {
		c.Remote.URL = srv.URL
		c.Remote.Token = "tok"
		c.Remote.Timeout = 5 * time.Second
		c.Remote.RatePerSec = 0
	})
	mustRun(t, cfg, "import", writeScheduleFile(t, "Fall", "Math"))

	out := mustRun(t, cfg, "sync")
	if !strings.Contains(out, "1 of 1 schedules synced") {
		t.Errorf("sync output = %q", out)
	}
	recs := mem.Records("alice")
	if len(recs) != 1 || recs[0].Name != "Fall" || len(recs[0].Tasks) != 1 {
		t.Fatalf("remote records = %+v", recs)
	}

	// The remote id is persisted; a second sync adopts instead of uploading.
	mustRun(t, cfg, "sync")
	if n := len(mem.Records("alice")); n != 1 {
		t.Errorf("remote records after resync = %d, want 1", n)
	}
	if out := mustRun(t, cfg, "schedules"); !strings.Contains(out, "synced") {
		t.Errorf("list should show synced:\n%s", out)
	}
}

func TestServeRequiresTokens(t *testing.T) {
	_, err := run(t, newTestConfig(t, nil), "serve")
	if err == nil || !strings.Contains(err.Error(), "server.tokens") {
		t.Errorf("err = %v, want server.tokens error", err)
	}
}
