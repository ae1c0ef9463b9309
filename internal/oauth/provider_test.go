package oauth

import (
	"context"
	"errors"
	"testing"
)

type staticProvider struct {
	name string
	info *UserInfo
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Authenticate(_ context.Context, _, _ string) (*UserInfo, error) {
	return p.info, nil
}

func TestRegistryResolve(t *testing.T) {
	google := &staticProvider{name: "google"}
	github := &staticProvider{name: "GitHub"}
	r := NewRegistry(google, github)

	cases := []struct {
		in   string
		want Provider
	}{
		{"google", google},
		{"GOOGLE", google},
		{"  Google  ", google},
		{"github", github},
		{"GitHub", github},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.in)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %v, want %v", tc.in, got.Name(), tc.want.Name())
		}
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry(&staticProvider{name: "google"})

	for _, name := range []string{"facebook", "", "  "} {
		if _, err := r.Resolve(name); !errors.Is(err, ErrUnknownProvider) {
			t.Errorf("Resolve(%q) = %v, want ErrUnknownProvider", name, err)
		}
	}
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	first := &staticProvider{name: "google"}
	second := &staticProvider{name: "Google"}
	r := NewRegistry(first, second)

	got, err := r.Resolve("google")
	if err != nil {
		t.Fatal(err)
	}
	if got != second {
		t.Error("later registration under the same name must replace the earlier one")
	}
}
