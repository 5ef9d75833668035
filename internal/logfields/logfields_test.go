package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestAttrKeys(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
	}{
		{ConfigPath("/p/buildconf.yaml"), KeyConfigPath},
		{ResolutionID("abc"), KeyResolutionID},
		{Base("/app/"), KeyBase},
		{Mode("production"), KeyMode},
		{Plugin("vue"), KeyPlugin},
		{Alias("@"), KeyAlias},
		{AliasTarget("/p/src"), KeyAliasTarget},
		{Field("base"), KeyField},
		{EnvFile(".env"), KeyEnvFile},
		{Duration(time.Millisecond), KeyDurationMS},
		{Error(nil), KeyError},
	}
	for _, c := range cases {
		if c.attr.Key != c.key {
			t.Errorf("attr key = %q, want %q", c.attr.Key, c.key)
		}
	}
}

func TestDurationMilliseconds(t *testing.T) {
	a := Duration(1500 * time.Microsecond)
	if got := a.Value.Float64(); got != 1.5 {
		t.Errorf("Duration value = %v, want 1.5", got)
	}
}

func TestErrorValue(t *testing.T) {
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Errorf("Error value = %q, want boom", got)
	}
	if got := Error(nil).Value.String(); got != "" {
		t.Errorf("Error(nil) value = %q, want empty", got)
	}
}
