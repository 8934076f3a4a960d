package verify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"pluginverify/artifact"
	"pluginverify/depfind"
	"pluginverify/problems"
	"pluginverify/resolver"
)

var log = commonlog.GetLogger("pluginverify.verify")

// HostDescriptor identifies one host application version to verify
// against. When Resolver is set it is caller-owned and reused as-is;
// otherwise the orchestrator opens one via its HostOpener and owns it for
// the duration of the host's group.
type HostDescriptor struct {
	ID   string
	Path string // host installation or index path, for the opener

	Resolver resolver.Resolver

	// Bundled maps platform module names to their resolvers. The resolvers
	// are owned by whoever built this descriptor.
	Bundled map[string]resolver.Resolver
}

// HostOpener constructs a host's class resolver. Host archives are an
// external concern.
type HostOpener interface {
	OpenHost(ctx context.Context, host *HostDescriptor) (resolver.Resolver, error)
}

// Task is one (plugin, host) work item. Tasks sharing the same
// *HostDescriptor are processed in one group against one host resolver.
type Task struct {
	Plugin artifact.Reference
	Host   *HostDescriptor
}

// Progress receives advisory progress updates. Fraction is monotonically
// non-decreasing across completed items; the status text carries no
// atomicity guarantee.
type Progress interface {
	OnProgress(fraction float64, status string)
}

// Config is the verification policy.
type Config struct {
	// ExternalClassPrefixes lists package prefixes (source form) whose
	// classes are assumed resolvable and never reported missing.
	ExternalClassPrefixes []string

	// ProblemsFilters and APIUsageFilters run, in order, over every raw
	// problem; any veto removes it.
	ProblemsFilters []Filter
	APIUsageFilters []Filter

	// TreatMissingDependencyAsError escalates an unresolved non-optional
	// dependency to a Failed verdict instead of letting missing classes
	// surface as resolution problems.
	TreatMissingDependencyAsError bool

	// Workers bounds how many host groups run concurrently. Zero or one
	// means sequential. Items within a group always run sequentially.
	Workers int
}

// HostError wraps a fatal host-side failure. It aborts the host's group;
// other groups in the run are unaffected.
type HostError struct {
	Host string
	Err  error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host %s: %v", e.Host, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }

// Orchestrator drives batches of verifications. Plugins are assumed
// potentially broken, hosts are assumed correct: a failure acquiring or
// analyzing one plugin yields a Failed verdict for that item only, while a
// failure constructing a host resolver aborts the whole group.
type Orchestrator struct {
	Artifacts   artifact.Service
	Descriptors Descriptors
	Plugins     resolver.Opener // opens a plugin archive's class resolver
	Hosts       HostOpener

	// JDK is the shared JDK class resolver, caller-owned. May be nil.
	JDK resolver.Resolver

	// Finders are dependency-resolution strategies tried after the host's
	// bundled modules.
	Finders []depfind.Finder

	Progress Progress
	Config   Config
}

type hostGroup struct {
	host  *HostDescriptor
	tasks []Task
}

// progressCounter serializes completion accounting so the reported
// fraction is monotonically non-decreasing even with concurrent groups.
type progressCounter struct {
	mu    sync.Mutex
	done  int
	total int
	sink  Progress
}

func (p *progressCounter) advance(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.sink != nil {
		p.sink.OnProgress(float64(p.done)/float64(p.total), status)
	}
}

// Run verifies every task and returns one verdict per task.
//
// Cancellation discards partial verdicts: Run returns (nil, ctx.Err()) once
// the context's cancellation is observed. A fatal host error removes that
// host's verdicts from the result and is reported in the returned error
// (all group errors joined); verdicts from other groups are still returned.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task) ([]problems.Verdict, error) {
	groups := groupTasks(tasks)
	log.Infof("verifying %d plugins against %d hosts", len(tasks), len(groups))

	progress := &progressCounter{total: len(tasks), sink: o.Progress}

	if o.Config.Workers <= 1 {
		var verdicts []problems.Verdict
		var hostErrs []error
		for _, g := range groups {
			vs, err := o.runGroup(ctx, g, progress)
			if err != nil {
				if isCancellation(err) {
					return nil, err
				}
				hostErrs = append(hostErrs, err)
				continue
			}
			verdicts = append(verdicts, vs...)
		}
		return verdicts, errors.Join(hostErrs...)
	}

	var mu sync.Mutex
	var verdicts []problems.Verdict
	var hostErrs []error

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.Config.Workers)
	for _, g := range groups {
		g := g
		eg.Go(func() error {
			vs, err := o.runGroup(gctx, g, progress)
			if err != nil {
				if isCancellation(err) {
					// Propagating cancels the remaining groups via gctx.
					return err
				}
				mu.Lock()
				hostErrs = append(hostErrs, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			verdicts = append(verdicts, vs...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return verdicts, errors.Join(hostErrs...)
}

// runGroup verifies one host group against a single host resolver. The
// resolver is released on every exit path, but only if this group opened
// it.
func (o *Orchestrator) runGroup(ctx context.Context, g *hostGroup, progress *progressCounter) (_ []problems.Verdict, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var handle *resolver.Handle
	if g.host.Resolver != nil {
		handle = resolver.Borrowed(g.host.Resolver)
	} else {
		if o.Hosts == nil {
			return nil, &HostError{Host: g.host.ID, Err: errors.New("no host resolver and no host opener configured")}
		}
		r, openErr := o.Hosts.OpenHost(ctx, g.host)
		if openErr != nil {
			return nil, &HostError{Host: g.host.ID, Err: openErr}
		}
		handle = resolver.Owned(r)
	}
	defer func() {
		if relErr := handle.Release(); relErr != nil {
			log.Errorf("releasing host resolver for %s: %v", g.host.ID, relErr)
			if err == nil {
				err = &HostError{Host: g.host.ID, Err: relErr}
			}
		}
	}()

	finders := depfind.Chain(append([]depfind.Finder{depfind.NewBundled(g.host.Bundled)}, o.Finders...))
	log.Infof("host %s: verifying %d plugins", g.host.ID, len(g.tasks))

	verdicts := make([]problems.Verdict, 0, len(g.tasks))
	for _, t := range g.tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := o.verifyPlugin(ctx, t, handle.Resolver(), finders)
		verdicts = append(verdicts, v)
		progress.advance(v.String())
	}
	return verdicts, nil
}

// verifyPlugin verifies a single work item. Every failure is scoped: the
// result is always a verdict, and all plugin-side resources (locked
// artifact, plugin resolver, dependency sources) are released before
// returning, whatever the outcome.
func (o *Orchestrator) verifyPlugin(ctx context.Context, t Task, hostRes resolver.Resolver, finders depfind.Chain) problems.Verdict {
	plugin := t.Plugin.String()
	host := t.Host.ID

	locked, err := o.Artifacts.Acquire(ctx, t.Plugin)
	if err != nil {
		return problems.Failed(plugin, host, fmt.Sprintf("acquiring artifact: %v", err))
	}
	defer func() {
		if relErr := o.Artifacts.Release(locked); relErr != nil {
			log.Errorf("releasing artifact %s: %v", plugin, relErr)
		}
	}()

	info, err := o.Descriptors.Read(ctx, locked)
	if err != nil {
		return problems.Failed(plugin, host, fmt.Sprintf("reading descriptor: %v", err))
	}
	if info.ID != "" {
		plugin = info.ID
	}

	pres, err := o.Plugins.Open(locked.Path())
	if err != nil {
		return problems.Failed(plugin, host, fmt.Sprintf("opening plugin classes: %v", err))
	}
	ph := resolver.Owned(pres)
	defer func() {
		if relErr := ph.Release(); relErr != nil {
			log.Errorf("releasing plugin resolver %s: %v", plugin, relErr)
		}
	}()

	enum, ok := pres.(resolver.Enumerable)
	if !ok {
		return problems.Failed(plugin, host, "plugin class source cannot enumerate classes")
	}

	var releases []func() error
	defer func() {
		for _, release := range releases {
			if relErr := release(); relErr != nil {
				log.Errorf("releasing dependency source of %s: %v", plugin, relErr)
			}
		}
	}()

	var depParts []resolver.Resolver
	for _, dep := range info.Dependencies {
		res := finders.Find(ctx, dep)
		if !res.Found {
			if !dep.Optional && o.Config.TreatMissingDependencyAsError {
				return problems.Failed(plugin, host, fmt.Sprintf("missing dependency %s: %s", dep, res.Reason))
			}
			// Degrades resolution only: classes the dependency would have
			// provided surface as unresolved references.
			log.Debugf("plugin %s: dependency %s unresolved: %s", plugin, dep, res.Reason)
			continue
		}
		depParts = append(depParts, res.Source)
		releases = append(releases, res.Release)
	}

	parts := make([]resolver.Resolver, 0, len(depParts)+4)
	parts = append(parts, pres)
	parts = append(parts, depParts...)
	parts = append(parts, bundledLayer(t.Host), hostRes, o.JDK)

	rctx := NewResolutionContext(info.ID, o.Config.ExternalClassPrefixes, parts...)

	raw := problems.NewSet()
	for _, name := range enum.Classes() {
		cf, err := pres.Resolve(name)
		if err != nil {
			// The plugin's own bytecode is unreadable.
			return problems.Failed(plugin, host, fmt.Sprintf("reading plugin class %s: %v", name, err))
		}
		VerifyClass(rctx, cf, raw)
	}

	filtered := ApplyFilters(raw, rctx, o.Config.ProblemsFilters, o.Config.APIUsageFilters)
	log.Debugf("plugin %s against %s: %d raw, %d filtered problems", plugin, host, raw.Len(), filtered.Len())
	return problems.WithProblems(plugin, host, filtered)
}

// bundledLayer folds a host's bundled modules into one resolver layer,
// ordered by module name for deterministic shadowing.
func bundledLayer(host *HostDescriptor) resolver.Resolver {
	if len(host.Bundled) == 0 {
		return nil
	}
	names := make([]string, 0, len(host.Bundled))
	for name := range host.Bundled {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]resolver.Resolver, 0, len(names))
	for _, name := range names {
		parts = append(parts, host.Bundled[name])
	}
	return resolver.NewComposite("bundled:"+host.ID, parts...)
}

// groupTasks partitions tasks by host descriptor, preserving first
// appearance order of hosts and task order within each group.
func groupTasks(tasks []Task) []*hostGroup {
	byHost := make(map[*HostDescriptor]*hostGroup)
	var groups []*hostGroup
	for _, t := range tasks {
		g, ok := byHost[t.Host]
		if !ok {
			g = &hostGroup{host: t.Host}
			byHost[t.Host] = g
			groups = append(groups, g)
		}
		g.tasks = append(g.tasks, t)
	}
	return groups
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
