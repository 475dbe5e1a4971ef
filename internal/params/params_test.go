package params

import (
	"errors"
	"reflect"
	"testing"
)

func testSchema() *Schema {
	return NewSchema("test",
		Field{Name: "page", Kind: KindInt, Default: 0},
		Field{Name: "per_page", Kind: KindInt, Default: 100, Max: 100},
		Field{Name: "text", Kind: KindString, Default: "", Required: true},
		Field{Name: "only_with_salary", Kind: KindBool, Default: false},
		Field{Name: "locale", Kind: KindString, Default: "RU", Allowed: []string{"RU", "EN"}},
		Field{Name: "experience", Kind: KindString},
		Field{Name: "salary", Kind: KindInt},
	)
}

func TestNewUsesDefaults(t *testing.T) {
	set := testSchema().New()
	if got := set.Int("per_page"); got != 100 {
		t.Fatalf("per_page = %d, want 100", got)
	}
	if _, ok := set.Get("experience"); ok {
		t.Fatalf("experience should start unset")
	}
}

func TestNewDoesNotShareDefaults(t *testing.T) {
	schema := testSchema()
	a := schema.New()
	b := schema.New()

	if err := a.Set("page", 3); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := b.Int("page"); got != 0 {
		t.Fatalf("second set page = %d, want 0", got)
	}
}

func TestSetRejections(t *testing.T) {
	cases := []struct {
		name  string
		param string
		value any
		want  error
	}{
		{"unknown", "nope", 1, ErrUnknownParameter},
		{"string for int", "page", "1", ErrTypeMismatch},
		{"float for int", "page", 1.0, ErrTypeMismatch},
		{"int for bool", "only_with_salary", 1, ErrTypeMismatch},
		{"int for string", "experience", 5, ErrTypeMismatch},
		{"required unset", "text", nil, ErrTypeMismatch},
		{"negative", "salary", -1, ErrOutOfRange},
		{"above ceiling", "per_page", 101, ErrOutOfRange},
		{"static enum", "locale", "DE", ErrNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := testSchema().New()
			before := set.Values()

			err := set.Set(tc.param, tc.value)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Set(%q, %v) error = %v, want %v", tc.param, tc.value, err, tc.want)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Param != tc.param {
				t.Fatalf("expected *ValidationError for %q, got %#v", tc.param, err)
			}
			if !reflect.DeepEqual(set.Values(), before) {
				t.Fatalf("set changed after rejected update: %v", set.Values())
			}
		})
	}
}

func TestSetAcceptsBoundsAndUnset(t *testing.T) {
	set := testSchema().New()
	if err := set.Set("per_page", 100); err != nil {
		t.Fatalf("Set(per_page, 100) error = %v", err)
	}
	if err := set.Set("salary", 0); err != nil {
		t.Fatalf("Set(salary, 0) error = %v", err)
	}
	if err := set.Set("salary", nil); err != nil {
		t.Fatalf("Set(salary, nil) error = %v", err)
	}
	if _, ok := set.Get("salary"); ok {
		t.Fatalf("salary should be unset")
	}
}

func TestSetString(t *testing.T) {
	set := testSchema().New()
	if err := set.SetString("salary", " 50000 "); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if got := set.Int("salary"); got != 50000 {
		t.Fatalf("salary = %d, want 50000", got)
	}
	if err := set.SetString("only_with_salary", "true"); err != nil {
		t.Fatalf("SetString() error = %v", err)
	}
	if err := set.SetString("salary", "lots"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("SetString(lots) error = %v, want ErrTypeMismatch", err)
	}
	if err := set.SetString("salary", ""); err != nil {
		t.Fatalf("SetString(empty) error = %v", err)
	}
	if _, ok := set.Get("salary"); ok {
		t.Fatalf("empty string should unset salary")
	}
}

func TestRestrict(t *testing.T) {
	set := testSchema().New()
	if err := set.Restrict("experience", []string{"noExperience", "between1And3"}); err != nil {
		t.Fatalf("Restrict() error = %v", err)
	}
	if err := set.Set("experience", "moreThan6"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("Set() error = %v, want ErrNotAllowed", err)
	}
	if err := set.Set("experience", "between1And3"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := set.Restrict("experience", []string{"noExperience"}); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("Restrict() with stale value error = %v, want ErrNotAllowed", err)
	}
	if err := set.Restrict("nope", nil); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Restrict(nope) error = %v, want ErrUnknownParameter", err)
	}
}

func TestQuerySkipsUnset(t *testing.T) {
	set := testSchema().New()
	if err := set.Set("text", "golang"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	query := set.Query()
	want := map[string]string{
		"page":             "0",
		"per_page":         "100",
		"text":             "golang",
		"only_with_salary": "false",
		"locale":           "RU",
	}
	if len(query) != len(want) {
		t.Fatalf("Query() = %v, want %v", query, want)
	}
	for key, value := range want {
		if got := query.Get(key); got != value {
			t.Fatalf("Query()[%s] = %q, want %q", key, got, value)
		}
	}
	if query.Has("experience") || query.Has("salary") {
		t.Fatalf("unset parameters leaked into query: %v", query)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	set := testSchema().New()
	if err := set.Restrict("experience", []string{"a"}); err != nil {
		t.Fatalf("Restrict() error = %v", err)
	}
	clone := set.Clone()
	if err := clone.Set("page", 7); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if set.Int("page") != 0 {
		t.Fatalf("original page changed to %d", set.Int("page"))
	}
	if err := clone.Set("experience", "b"); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("clone lost restriction: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	set := testSchema().New()
	if err := set.Set("text", "go"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got := set.Describe()
	want := "locale=RU only_with_salary=false page=0 per_page=100 text=go"
	if got != want {
		t.Fatalf("Describe() = %q, want %q", got, want)
	}
}
