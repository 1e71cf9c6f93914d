package envstruct_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/styrkr/styrkr/internal/envstruct"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

type serverConfig struct {
	Addr        string        `env:"ADDR" envDefault:"localhost:0"`
	Watch       bool          `env:"WATCH" envDefault:"false"`
	MaxWeeks    int           `env:"MAX_WEEKS" envDefault:"13"`
	Lifetime    time.Duration `env:"LIFETIME" envDefault:"12h"`
	Unannotated string
}

func TestPopulate(t *testing.T) {
	tests := []struct {
		name      string
		v         any
		lookupEnv func(string) (string, bool)
		want      any
		wantErr   error
	}{
		{
			name:      "nil",
			v:         nil,
			lookupEnv: env(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "not pointer",
			v:         serverConfig{},
			lookupEnv: env(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
		{
			name:      "defaults",
			v:         &serverConfig{},
			lookupEnv: env(nil),
			want:      &serverConfig{Addr: "localhost:0", Watch: false, MaxWeeks: 13, Lifetime: 12 * time.Hour},
		},
		{
			name: "environment overrides defaults",
			v:    &serverConfig{},
			lookupEnv: env(map[string]string{
				"ADDR": ":8080", "WATCH": "true", "MAX_WEEKS": "6", "LIFETIME": "30m", "Unannotated": "x",
			}),
			want: &serverConfig{Addr: ":8080", Watch: true, MaxWeeks: 6, Lifetime: 30 * time.Minute},
		},
		{
			name: "missing without default",
			v: &struct {
				Required string `env:"REQUIRED"`
			}{},
			lookupEnv: env(nil),
			wantErr:   envstruct.ErrEnvNotSet,
		},
		{
			name:      "unparsable int",
			v:         &serverConfig{},
			lookupEnv: env(map[string]string{"MAX_WEEKS": "many"}),
			wantErr:   envstruct.ErrParse,
		},
		{
			name:      "unparsable bool",
			v:         &serverConfig{},
			lookupEnv: env(map[string]string{"WATCH": "sometimes"}),
			wantErr:   envstruct.ErrParse,
		},
		{
			name: "unsupported kind",
			v: &struct {
				Ratio float64 `env:"RATIO" envDefault:"0.85"`
			}{},
			lookupEnv: env(nil),
			wantErr:   envstruct.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := envstruct.Populate(tt.v, tt.lookupEnv)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Populate() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Populate() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, tt.v); diff != "" {
				t.Errorf("Populate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
