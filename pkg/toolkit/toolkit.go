// Package toolkit wires adapters, matchers and reports into the actions the
// menu and the CLI commands run.
package toolkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/user/cyberusb/pkg/config"
	"github.com/user/cyberusb/pkg/dispatch"
	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/platform"
	"github.com/user/cyberusb/pkg/sysexec"
	"github.com/user/cyberusb/pkg/ui"
	"github.com/user/cyberusb/pkg/wrappers"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Toolkit holds everything an action needs. Build it once at startup.
type Toolkit struct {
	Config     *config.Config
	ConfigPath string
	Target     platform.Target
	Runner     sysexec.Runner
	Signatures engine.SignatureSet
	Dispatcher *dispatch.Dispatcher
	Confirmer  Confirmer
	Out        io.Writer

	// Format is FormatText or FormatJSON.
	Format string
	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
	// Now is the clock used for driver staleness.
	Now func() time.Time
	// PID identifies the toolkit's own process in process scans; 0 means
	// os.Getpid().
	PID int
}

func (t *Toolkit) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Toolkit) pid() int {
	if t.PID != 0 {
		return t.PID
	}
	return os.Getpid()
}

func (t *Toolkit) out() io.Writer {
	if t.Out == nil {
		return os.Stdout
	}
	return t.Out
}

func (t *Toolkit) printf(format string, args ...interface{}) {
	fmt.Fprintf(t.out(), format, args...)
}

func (t *Toolkit) confirm(prompt string) bool {
	if t.AssumeYes {
		return true
	}
	if t.Confirmer == nil {
		return false
	}
	ok, err := t.Confirmer.Confirm(prompt)
	if err != nil {
		logger.Debugf("Confirmation aborted: %v", err)
		return false
	}
	return ok
}

// Print writes a report in the configured format.
func (t *Toolkit) Print(r *engine.Report) error {
	if t.Format == FormatJSON {
		data, err := r.RenderJSON()
		if err != nil {
			return err
		}
		t.printf("%s\n", data)
		return nil
	}
	t.printf("%s", ui.ColorizeReport(r.Render()))
	return nil
}

// collect runs a source and turns its failure into a logged diagnostic.
// notice is set when an optional capability is missing so the caller can
// mention it once in its report. err is non-nil only when ctx was cancelled.
func collect(ctx context.Context, src wrappers.Source) (records []engine.Record, notice string, err error) {
	records, err = src.Collect(ctx)
	if err == nil {
		return records, "", nil
	}
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	logger.Warnf("%s: %v", src.Name(), err)
	if errors.Is(err, sysexec.ErrCapabilityMissing) {
		notice = fmt.Sprintf("Skipped: %v", err)
	}
	return records, notice, nil
}
