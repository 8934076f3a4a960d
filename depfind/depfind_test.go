package depfind

import (
	"context"
	"strings"
	"testing"

	"pluginverify/resolver"
)

// stubFinder returns a fixed result and records whether it was consulted.
type stubFinder struct {
	result Result
	called bool
}

func (f *stubFinder) Find(ctx context.Context, dep Dependency) Result {
	f.called = true
	return f.result
}

func TestChainFirstHitWins(t *testing.T) {
	hit := resolver.NewMapResolver("hit")
	first := &stubFinder{result: NotFound("not here")}
	second := &stubFinder{result: Provided(hit, nil)}
	third := &stubFinder{result: Provided(resolver.NewMapResolver("other"), nil)}

	res := Chain{first, second, third}.Find(context.Background(), Dependency{ID: "org.example.dep"})

	if !res.Found || res.Source != hit {
		t.Fatalf("expected second finder's source, got %+v", res)
	}
	if !first.called || !second.called {
		t.Error("finders before the hit must be consulted in order")
	}
	if third.called {
		t.Error("finders after the hit must not be consulted")
	}
}

func TestChainJoinsReasons(t *testing.T) {
	c := Chain{
		&stubFinder{result: NotFound("no bundled module")},
		&stubFinder{result: NotFound("no archive on disk")},
	}

	res := c.Find(context.Background(), Dependency{ID: "org.example.dep"})
	if res.Found {
		t.Fatal("expected a miss")
	}
	if !strings.Contains(res.Reason, "no bundled module") || !strings.Contains(res.Reason, "no archive on disk") {
		t.Errorf("reasons not joined: %q", res.Reason)
	}
}

func TestEmptyChain(t *testing.T) {
	res := Chain{}.Find(context.Background(), Dependency{ID: "org.example.dep"})
	if res.Found || res.Reason == "" {
		t.Errorf("empty chain should miss with a reason, got %+v", res)
	}
}

func TestBundledFindsByModuleNameThenID(t *testing.T) {
	mod := resolver.NewMapResolver("platform.core")
	b := NewBundled(map[string]resolver.Resolver{"platform.core": mod})

	byModule := b.Find(context.Background(), Dependency{ID: "x", ModuleName: "platform.core"})
	if !byModule.Found || byModule.Source != mod {
		t.Errorf("module name lookup failed: %+v", byModule)
	}

	byID := b.Find(context.Background(), Dependency{ID: "platform.core"})
	if !byID.Found {
		t.Errorf("id lookup failed: %+v", byID)
	}

	miss := b.Find(context.Background(), Dependency{ID: "unknown"})
	if miss.Found || miss.Reason == "" {
		t.Errorf("expected reasoned miss, got %+v", miss)
	}
}

func TestProvidedDefaultRelease(t *testing.T) {
	res := Provided(resolver.NewMapResolver("r"), nil)
	if err := res.Release(); err != nil {
		t.Errorf("default release should be a no-op: %v", err)
	}
}
