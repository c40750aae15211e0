package contributions

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestCalendarJSONTags(t *testing.T) {
	calType := reflect.TypeOf(Calendar{})
	fields := map[string]string{
		"Login":              "login",
		"Provider":           "provider",
		"TotalContributions": "totalContributions",
		"Days":               "days",
		"FetchedAt":          "fetchedAt",
	}
	for name, tag := range fields {
		f, ok := calType.FieldByName(name)
		if !ok {
			t.Fatalf("field %s missing", name)
		}
		if got := f.Tag.Get("json"); got != tag {
			t.Fatalf("field %s: expected tag %q, got %q", name, tag, got)
		}
	}
}

func TestNewCalendarNormalizesLogin(t *testing.T) {
	c := NewCalendar("  Octocat ", 3, nil)
	if c.Login != "octocat" {
		t.Fatalf("expected normalized login, got %q", c.Login)
	}
	if c.Days == nil || !c.IsEmpty() {
		t.Fatalf("expected empty non-nil days")
	}
	if c.Count("2024-01-01") != 0 {
		t.Fatalf("expected zero for missing day")
	}
}

func TestMergeLaterWinsAndSumsTotals(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	a := Calendar{TotalContributions: 10, Days: Counts{"2023-12-31": 4, "2024-01-01": 1}, Years: []int{2023}, FetchedAt: early, Provider: "github"}
	b := Calendar{TotalContributions: 5, Days: Counts{"2024-01-01": 2}, Years: []int{2024, 2023}, FetchedAt: late}
	got := Merge("Octocat", a, b)
	if got.Login != "octocat" || got.TotalContributions != 15 {
		t.Fatalf("unexpected merge header %+v", got)
	}
	if got.Count("2024-01-01") != 2 || got.Count("2023-12-31") != 4 {
		t.Fatalf("unexpected merged days %+v", got.Days)
	}
	if !reflect.DeepEqual(got.Years, []int{2023, 2024}) {
		t.Fatalf("unexpected years %v", got.Years)
	}
	if !got.FetchedAt.Equal(late) || got.Provider != "github" {
		t.Fatalf("unexpected merge metadata %+v", got)
	}
	if dates := got.SortedDates(); dates[0] != "2023-12-31" {
		t.Fatalf("expected sorted dates, got %v", dates)
	}
}

func TestValidLogin(t *testing.T) {
	cases := map[string]bool{
		"octocat":                true,
		" Octo-Cat ":             true,
		"a":                      true,
		"-octocat":               false,
		"octocat-":               false,
		"octo--cat":              false,
		"../etc":                 false,
		"":                       false,
		"octo_cat":               false,
		strings.Repeat("a", 39):  true,
		strings.Repeat("a", 40):  false,
		strings.Repeat("a-", 20): false,
	}
	for in, want := range cases {
		if got := ValidLogin(in); got != want {
			t.Fatalf("ValidLogin(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Calendar{Login: "octocat", Days: Counts{"2024-01-01": 1}, Years: []int{2024}}
	cp := orig.Clone()
	cp.Days["2024-01-01"] = 9
	cp.Years[0] = 1999
	if orig.Days["2024-01-01"] != 1 || orig.Years[0] != 2024 {
		t.Fatalf("expected clone not to share storage")
	}
}
