package ui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/spotgrid/internal/campaign"
	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/db"
)

// fixedNow is Monday 2024-06-10 09:00; its week runs 2024-06-09 to 2024-06-15.
var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local)

type testEnv struct {
	repo *db.SQLite
	cfg  *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "unused.db")
	cfg.Log.Level = "error"
	cfg.UI.Color = "never"
	return &testEnv{repo: repo, cfg: cfg}
}

// run executes one command on a fresh App so flag values never leak
// between invocations.
func (e *testEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(e.repo, e.cfg)
	app.now = func() time.Time { return fixedNow }
	app.out = &out
	app.errOut = &errOut
	app.root.SetOut(&out)
	app.root.SetErr(&errOut)
	app.root.SetArgs(args)
	err = app.Execute()
	return out.String(), errOut.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v: error = %v\nstdout:\n%s\nstderr:\n%s", args, err, out, errOut)
	}
	return out
}

func (e *testEnv) campaignID(t *testing.T, name string) string {
	t.Helper()
	list, err := e.repo.ListCampaigns(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListCampaigns() error = %v", err)
	}
	for _, c := range list {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("campaign %q not found", name)
	return ""
}

func seedTwoCampaigns(t *testing.T, e *testEnv) (bakery, garage string) {
	t.Helper()
	e.mustRun(t, "campaign", "add", "Bakery", "--start", "2024-06-01", "--end", "2024-06-30",
		"-p", "7", "--content", "bread:Bread:30", "--activate")
	e.mustRun(t, "campaign", "add", "Garage", "--start", "2024-06-01", "--end", "2024-06-30",
		"-p", "3", "--content", "oil:Oil:20", "--content", "tires", "--activate")
	return e.campaignID(t, "Bakery"), e.campaignID(t, "Garage")
}

func TestCampaignAddAndList(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun(t, "campaign", "add", "Summer Sale", "--start", "2024-06-01", "--end", "2024-06-30")
	if !strings.Contains(out, "Created campaign Summer Sale") || !strings.Contains(out, "draft") {
		t.Errorf("add output = %q", out)
	}

	out = e.mustRun(t, "campaign", "list")
	if !strings.Contains(out, "Summer Sale") || !strings.Contains(out, "2024-06-01 - 2024-06-30") {
		t.Errorf("list output = %q", out)
	}

	out = e.mustRun(t, "campaign", "list", "--status", "active")
	if !strings.Contains(out, "No campaigns.") {
		t.Errorf("list --status active = %q, want no campaigns", out)
	}
}

func TestCampaignAddRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)

	if _, _, err := e.run(t, "campaign", "add", "X", "--start", "2024-06-10", "--end", "2024-06-01"); !errors.Is(err, campaign.ErrInvalidCampaign) {
		t.Errorf("end before start error = %v, want ErrInvalidCampaign", err)
	}
	if _, _, err := e.run(t, "campaign", "add", "X", "-p", "12"); !errors.Is(err, campaign.ErrInvalidCampaign) {
		t.Errorf("priority 12 error = %v, want ErrInvalidCampaign", err)
	}
	if _, _, err := e.run(t, "campaign", "add", "X", "--content", ":title"); !errors.Is(err, errInvalidContent) {
		t.Errorf("empty content id error = %v, want errInvalidContent", err)
	}
}

func TestSlotEditsFeedQueueAndBreakdown(t *testing.T) {
	e := newTestEnv(t)
	bakery, garage := seedTwoCampaigns(t, e)

	out := e.mustRun(t, "slot", "set", bakery, "2024-06-11", "2", "10:00")
	if !strings.Contains(out, "saved Bakery") {
		t.Errorf("slot set output = %q", out)
	}
	e.mustRun(t, "slot", "inc", garage[:8], "2024-06-11", "20")

	out = e.mustRun(t, "queue", "2024-06-11", "10:00")
	want := []string{"bread", "bread", "oil", "tires"}
	pos := 0
	for _, id := range want {
		i := strings.Index(out[pos:], "media/"+id)
		if i < 0 {
			t.Fatalf("queue output missing %s after offset %d:\n%s", id, pos, out)
		}
		pos += i + 1
	}

	out = e.mustRun(t, "breakdown", "2024-06-11", "10:00")
	if b, g := strings.Index(out, "Bakery"), strings.Index(out, "Garage"); b < 0 || g < 0 || b > g {
		t.Errorf("breakdown should list Bakery before Garage:\n%s", out)
	}
	if !strings.Contains(out, "Total: 3") {
		t.Errorf("breakdown total missing:\n%s", out)
	}

	out = e.mustRun(t, "week", "2024-06-11")
	if !strings.Contains(out, "Total: 3 plays") {
		t.Errorf("week output missing total:\n%s", out)
	}
	if !strings.Contains(out, "Peak: 2024-06-11 10:00 (3)") {
		t.Errorf("week output missing peak:\n%s", out)
	}

	out = e.mustRun(t, "week", "2024-06-04", "--shift", "1")
	if !strings.Contains(out, "Total: 3 plays") || !strings.Contains(out, "prev: 2024-06-02   next: 2024-06-16") {
		t.Errorf("shifted week output:\n%s", out)
	}
}

func TestSlotEditSkipsRejectedSlots(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	// 08:00 and 08:30 already started; 09:00 starts exactly now.
	out, errOut, err := e.run(t, "slot", "set", bakery, "2024-06-10", "1", "08:00-09:30")
	if err != nil {
		t.Fatalf("slot set error = %v", err)
	}
	if !strings.Contains(out, "skipped 2 of 4 slots") {
		t.Errorf("stdout = %q, want skipped count", out)
	}
	if strings.Count(errOut, "warning:") != 1 {
		t.Errorf("stderr = %q, want one rate-limited warning", errOut)
	}

	c, err := e.repo.GetCampaign(context.Background(), bakery)
	if err != nil {
		t.Fatalf("GetCampaign() error = %v", err)
	}
	if got := c.ScheduleGrid.Total(); got != 2 {
		t.Errorf("saved plays = %d, want 2", got)
	}
}

func TestSlotEditOutsideCampaign(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	out := e.mustRun(t, "slot", "inc", bakery, "2024-07-02", "10:00")
	if !strings.Contains(out, "No changes to save.") {
		t.Errorf("stdout = %q, want nothing saved", out)
	}
}

func TestRepeatAndCopyWeek(t *testing.T) {
	e := newTestEnv(t)
	bakery, garage := seedTwoCampaigns(t, e)

	e.mustRun(t, "slot", "set", bakery, "2024-06-11", "1", "20:00")
	out := e.mustRun(t, "repeat", bakery, "2024-06-11", "20:00", "--step", "1h")
	// 21:00 through 23:00 hourly.
	if !strings.Contains(out, "Repeated 1 source slots into 3 slots") {
		t.Errorf("repeat output = %q", out)
	}

	out = e.mustRun(t, "copy-week", bakery, "--from", "2024-06-11", "--to", "2024-06-18")
	if !strings.Contains(out, "Copied 4 slots") {
		t.Errorf("copy-week output = %q", out)
	}

	out = e.mustRun(t, "copy-week", garage, "--campaign", bakery, "--to", "2024-06-18")
	if !strings.Contains(out, "Copied 4 slots") || !strings.Contains(out, "saved Garage") {
		t.Errorf("copy from campaign output = %q", out)
	}

	c, err := e.repo.GetCampaign(context.Background(), garage)
	if err != nil {
		t.Fatalf("GetCampaign() error = %v", err)
	}
	if got := c.ScheduleGrid.PlayCount("2024-06-18", 44); got != 1 {
		t.Errorf("garage 2024-06-18 22:00 = %d, want 1", got)
	}
}

func TestCopyWeekSkipsStartedSlots(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	e.mustRun(t, "slot", "set", bakery, "2024-06-17", "1", "08:00", "10:00")
	out, errOut, err := e.run(t, "copy-week", bakery, "--from", "2024-06-17", "--to", "2024-06-10")
	if err != nil {
		t.Fatalf("copy-week error = %v", err)
	}
	if !strings.Contains(out, "Copied 1 slots") || !strings.Contains(out, "skipped 1 slots that cannot be edited") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(errOut, "warning:") {
		t.Errorf("stderr = %q, want a warning", errOut)
	}

	c, err := e.repo.GetCampaign(context.Background(), bakery)
	if err != nil {
		t.Fatalf("GetCampaign() error = %v", err)
	}
	if got := c.ScheduleGrid.PlayCount("2024-06-10", 16); got != 0 {
		t.Errorf("2024-06-10 08:00 = %d, want 0", got)
	}
	if got := c.ScheduleGrid.PlayCount("2024-06-10", 20); got != 1 {
		t.Errorf("2024-06-10 10:00 = %d, want 1", got)
	}
}

func TestWeekNavigation(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)
	e.mustRun(t, "slot", "set", bakery, "2024-06-11", "2", "10:00")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "next",
			args: []string{"week", "2024-06-04", "--next"},
			want: []string{"Total: 2 plays", "prev: 2024-06-02   next: 2024-06-16"},
		},
		{
			name: "today",
			args: []string{"week", "2024-05-01", "--today"},
			want: []string{"Total: 2 plays", "prev: 2024-06-02   next: 2024-06-16"},
		},
		{
			name: "prev",
			args: []string{"week", "--prev"},
			want: []string{"No plays scheduled for this week.", "prev: 2024-05-26   next: 2024-06-09"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.mustRun(t, tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}

	if _, _, err := e.run(t, "week", "--prev", "--next"); err == nil {
		t.Error("--prev with --next should fail")
	}
}

func TestRepeatInvalidStep(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	if _, _, err := e.run(t, "repeat", bakery, "2024-06-11", "20:00", "--step", "3h"); err == nil {
		t.Error("repeat --step 3h should fail")
	}
}

func TestToggleClearsFutureSlots(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	e.mustRun(t, "slot", "set", bakery, "2024-06-12", "2", "10:00")
	out := e.mustRun(t, "campaign", "toggle", bakery)
	if !strings.Contains(out, "paused") {
		t.Errorf("toggle output = %q", out)
	}

	c, err := e.repo.GetCampaign(context.Background(), bakery)
	if err != nil {
		t.Fatalf("GetCampaign() error = %v", err)
	}
	if c.Status != campaign.StatusPaused {
		t.Errorf("status = %s, want paused", c.Status)
	}
	if len(c.ScheduleGrid) != 0 {
		t.Errorf("future slots kept after pause: %v", c.ScheduleGrid)
	}
}

func TestCloneAndDelete(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	out := e.mustRun(t, "campaign", "clone", bakery)
	if !strings.Contains(out, "Bakery (copy)") {
		t.Errorf("clone output = %q", out)
	}

	e.mustRun(t, "campaign", "delete", bakery)
	out = e.mustRun(t, "campaign", "list")
	if strings.Contains(out, "Bakery  ") {
		t.Errorf("deleted campaign still listed:\n%s", out)
	}
	out = e.mustRun(t, "campaign", "list", "--status", "deleted")
	if !strings.Contains(out, "Bakery") {
		t.Errorf("soft-deleted campaign missing from deleted list:\n%s", out)
	}
}

func TestUnknownCampaignID(t *testing.T) {
	e := newTestEnv(t)
	seedTwoCampaigns(t, e)

	if _, _, err := e.run(t, "campaign", "show", " "); !errors.Is(err, campaign.ErrCampaignNotFound) {
		t.Errorf("blank id error = %v, want ErrCampaignNotFound", err)
	}
	if _, _, err := e.run(t, "campaign", "show", "zzzz"); !errors.Is(err, campaign.ErrCampaignNotFound) {
		t.Errorf("unknown id error = %v, want ErrCampaignNotFound", err)
	}
}

func TestPreview(t *testing.T) {
	e := newTestEnv(t)
	bakery, _ := seedTwoCampaigns(t, e)

	e.mustRun(t, "slot", "set", bakery, "2024-06-11", "1", "06:00,18:30")
	out := e.mustRun(t, "preview", "2024-06-11")
	if !strings.Contains(out, "06:00") || !strings.Contains(out, "18:30") {
		t.Errorf("preview output = %q", out)
	}
	if strings.Contains(out, "10:00") {
		t.Errorf("preview lists an empty slot:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun(t, "version")
	if !strings.HasPrefix(out, "spotgrid dev") {
		t.Errorf("version output = %q", out)
	}
}
