// pverify - checks binary compatibility of plugins against host builds.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"pluginverify/artifact"
	"pluginverify/config"
	"pluginverify/depfind"
	"pluginverify/problems"
	"pluginverify/report"
	"pluginverify/resolver"
	"pluginverify/verify"
)

var log = commonlog.GetLogger("pverify")

type stringList []string

func (l *stringList) String() string { return fmt.Sprint(*l) }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var hosts stringList
	verbose := flag.Bool("v", false, "Verbose output")
	configPath := flag.String("config", "", "Path to pverify.toml")
	jdkIndex := flag.String("jdk-index", "", "Path to a JDK class index (.pvci)")
	workers := flag.Int("workers", 0, "Concurrent host groups (overrides config)")
	dbPath := flag.String("db", "", "SQLite results database (overrides config)")
	flag.Var(&hosts, "host", "Host class index (.pvci); repeatable")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pverify [options] plugin...\n\n")
		fmt.Fprintf(os.Stderr, "Verifies each plugin against each host and reports binary incompatibilities.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pverify -host ide-241.pvci my-plugin.pvci\n")
		fmt.Fprintf(os.Stderr, "  pverify -host ide-241.pvci -host ide-242.pvci -jdk-index jdk17.pvci plugins/*.pvci\n")
		fmt.Fprintf(os.Stderr, "  pverify -config pverify.toml -db results.db -host ide-241.pvci my-plugin.pvci\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	plugins := flag.Args()
	if len(plugins) == 0 || len(hosts) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *workers > 0 {
		cfg.Verification.Workers = *workers
	}
	if *dbPath != "" {
		cfg.Report.Database = *dbPath
	}

	verdicts, err := run(cfg, hosts, plugins, *jdkIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := report.Render(os.Stdout, verdicts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Println(report.Summarize(verdicts))

	if cfg.Report.Database != "" {
		if err := save(cfg.Report.Database, verdicts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(exitCode(verdicts))
}

func run(cfg *config.Config, hostPaths, pluginPaths []string, jdkIndex string) ([]problems.Verdict, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jdk resolver.Resolver
	if jdkIndex != "" {
		r, err := loadIndex(jdkIndex, "jdk")
		if err != nil {
			return nil, err
		}
		jdk = r
	}

	descriptors, err := buildHosts(hostPaths)
	if err != nil {
		return nil, err
	}

	var tasks []verify.Task
	for _, host := range descriptors {
		for _, p := range pluginPaths {
			tasks = append(tasks, verify.Task{
				Plugin: artifact.Reference{Path: p},
				Host:   host,
			})
		}
	}

	problemsFilters, apiFilters, err := buildFilters(cfg)
	if err != nil {
		return nil, err
	}

	artifacts := &artifact.DirService{}
	orch := &verify.Orchestrator{
		Artifacts:   artifacts,
		Descriptors: &sidecarDescriptors{},
		Plugins:     indexOpener{},
		Hosts:       nil, // host resolvers are pre-opened below
		JDK:         jdk,
		Finders:     buildFinders(cfg, artifacts),
		Progress:    &consoleProgress{},
		Config: verify.Config{
			ExternalClassPrefixes:         cfg.Verification.ExternalClassPrefixes,
			ProblemsFilters:               problemsFilters,
			APIUsageFilters:               apiFilters,
			TreatMissingDependencyAsError: cfg.Verification.TreatMissingDependencyAsError,
			Workers:                       cfg.Verification.Workers,
		},
	}

	return orch.Run(ctx, tasks)
}

func buildFilters(cfg *config.Config) (problemsFilters, apiFilters []verify.Filter, err error) {
	problemsFilters = []verify.Filter{verify.AllowExternal{}}
	if path := cfg.ResolvePath(cfg.Filters.IgnoreFile); path != "" {
		rules, err := verify.LoadIgnoreRules(path)
		if err != nil {
			return nil, nil, err
		}
		problemsFilters = append(problemsFilters, verify.IgnoredProblems{Rules: rules})
	}
	if cfg.Filters.AllowExperimental {
		apiFilters = append(apiFilters, verify.AllowExperimental{})
	}
	return problemsFilters, apiFilters, nil
}

func buildFinders(cfg *config.Config, artifacts artifact.Service) []depfind.Finder {
	var finders []depfind.Finder
	for _, dir := range cfg.Verification.DependencyDirs {
		finders = append(finders, &depfind.LocalDir{
			Dir:       cfg.ResolvePath(dir),
			Artifacts: artifacts,
			Opener:    indexOpener{},
		})
	}
	return finders
}

func save(path string, verdicts []problems.Verdict) error {
	store, err := report.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.SaveRun(verdicts)
	if err != nil {
		return err
	}
	log.Infof("saved run %s to %s", runID, path)
	return nil
}

// exitCode: 0 all compatible, 2 problems found, 1 verification failures.
func exitCode(verdicts []problems.Verdict) int {
	code := 0
	for _, v := range verdicts {
		switch v.State {
		case problems.StateFailed:
			return 1
		case problems.StateProblems:
			code = 2
		}
	}
	return code
}

// consoleProgress prints advisory progress to stderr.
type consoleProgress struct{}

func (consoleProgress) OnProgress(fraction float64, status string) {
	fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", fraction*100, status)
}
