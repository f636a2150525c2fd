package toolkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/cyberusb/pkg/dispatch"
	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/menu"
)

// Execute runs one menu action. It satisfies menu.Executor.
func (t *Toolkit) Execute(ctx context.Context, action menu.Action) error {
	logger.Debugf("Executing %s", action)
	switch action {
	case menu.Cleanup:
		return t.Cleanup(ctx)
	case menu.Drivers:
		return t.Drivers(ctx)
	case menu.Disk:
		return t.printReport(t.DiskReport(ctx))
	case menu.Threats:
		return t.printReport(t.ThreatReport(ctx, ThreatOptions{Dir: t.Config.ScanDir, ClamAV: true, Hash: true}))
	case menu.Credentials:
		return t.printReport(t.CredentialReport(ctx))
	case menu.Hardening:
		return t.scriptOr(ctx, action, t.HardeningReport)
	case menu.Network:
		return t.scriptOr(ctx, action, t.NetworkReport)
	case menu.Updates, menu.Performance, menu.Power, menu.Phishing, menu.Ethical:
		return t.runScript(ctx, action)
	case menu.RunAll:
		return t.RunAll(ctx)
	case menu.ToggleAutoUpdate:
		return t.ToggleAutoUpdate()
	case menu.CycleLogLevel:
		return t.CycleLogLevel()
	case menu.ShowSettings:
		return t.ShowSettings()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// Cleanup asks for confirmation, then removes temp and cache files and
// prints the cleanup report.
func (t *Toolkit) Cleanup(ctx context.Context) error {
	if !t.confirm("This will delete temporary and cache files. Continue?") {
		t.printf("Cleanup cancelled\n")
		return nil
	}
	return t.printReport(t.CleanupReport(ctx, false))
}

// RunAll executes every performance action, then every security check.
// A failing action is reported and the run moves on.
func (t *Toolkit) RunAll(ctx context.Context) error {
	t.printf("Running all performance optimizations...\n")
	for _, a := range menu.RunAllPerformance {
		if err := t.runStep(ctx, a); err != nil {
			return err
		}
	}
	t.printf("\nRunning all security checks...\n")
	for _, a := range menu.RunAllSecurity {
		if err := t.runStep(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (t *Toolkit) runStep(ctx context.Context, a menu.Action) error {
	err := t.Execute(ctx, a)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	t.printf("%v\n", err)
	return nil
}

func (t *Toolkit) printReport(r *engine.Report, err error) error {
	if err != nil {
		return err
	}
	return t.Print(r)
}

func (t *Toolkit) runScript(ctx context.Context, action menu.Action) error {
	if t.Dispatcher == nil {
		return fmt.Errorf("%w for %s: %s", dispatch.ErrActionUnavailable, t.Target.Distro(), action)
	}
	return t.Dispatcher.Run(ctx, string(action))
}

// scriptOr runs the target's script for action when one is installed, and
// the built-in report otherwise.
func (t *Toolkit) scriptOr(ctx context.Context, action menu.Action, builtin func(context.Context) (*engine.Report, error)) error {
	if t.Dispatcher != nil {
		_, err := t.Dispatcher.Resolve(string(action))
		if err == nil {
			return t.Dispatcher.Run(ctx, string(action))
		}
		if !errors.Is(err, dispatch.ErrActionUnavailable) {
			logger.Warnf("%v; using built-in check", err)
		}
	}
	return t.printReport(builtin(ctx))
}
