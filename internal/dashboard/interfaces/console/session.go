package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"energy-dashboard/internal/analytics/domain/consumption"
	"energy-dashboard/internal/dashboard/interfaces/report"
	ingestion "energy-dashboard/internal/ingestion/domain"
)

// Dashboards is what a session needs from the analytics service.
type Dashboards interface {
	Regions(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (consumption.Window, error)
	Compute(ctx context.Context, region string, window consumption.Window) (consumption.Dashboard, error)
}

// RefreshFunc reloads the sources and reports whether anything changed.
type RefreshFunc func(ctx context.Context) (bool, error)

// Session is a line-oriented dashboard: each command changes the selection
// and recomputes the dashboard.
type Session struct {
	dashboards Dashboards
	in         io.Reader
	out        io.Writer
	logger     *log.Logger
	refresh    RefreshFunc
	exportDir  string

	region string
	window consumption.Window
}

// Option customizes a Session.
type Option func(*Session)

// WithRefresh enables the refresh command.
func WithRefresh(fn RefreshFunc) Option {
	return func(s *Session) { s.refresh = fn }
}

// WithExportDir sets the default export directory.
func WithExportDir(dir string) Option {
	return func(s *Session) {
		if dir != "" {
			s.exportDir = dir
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSelection sets the initial region and window.
func WithSelection(region string, window consumption.Window) Option {
	return func(s *Session) {
		s.region = region
		s.window = window
	}
}

// NewSession constructs a Session.
func NewSession(dashboards Dashboards, in io.Reader, out io.Writer, opts ...Option) (*Session, error) {
	if dashboards == nil {
		return nil, errors.New("console: nil dashboards")
	}
	if in == nil || out == nil {
		return nil, errors.New("console: nil input or output")
	}
	s := &Session{
		dashboards: dashboards,
		in:         in,
		out:        out,
		logger:     log.New(io.Discard, "", 0),
		exportDir:  "exports",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Selection returns the current region and window.
func (s *Session) Selection() (string, consumption.Window) { return s.region, s.window }

// Run shows the dashboard of the initial selection and then serves commands
// until quit or end of input.
func (s *Session) Run(ctx context.Context) error {
	if err := s.selectDefaults(ctx); err != nil {
		return err
	}
	if err := s.show(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(s.in)
	s.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.Execute(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		s.prompt()
	}
	return scanner.Err()
}

// Execute runs one command line. It reports whether the session should end.
func (s *Session) Execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true, nil
	case "help":
		s.help()
		return false, nil
	case "regions":
		return false, s.listRegions(ctx)
	case "region":
		if len(args) != 1 {
			return false, errors.New("usage: region <ID>")
		}
		return false, s.selectRegion(ctx, args[0])
	case "range":
		if len(args) != 2 {
			return false, errors.New("usage: range <YYYY-MM-DD> <YYYY-MM-DD>")
		}
		window, err := consumption.ParseWindow(args[0], args[1])
		if err != nil {
			return false, err
		}
		if bounds, err := s.dashboards.DateRange(ctx); err == nil {
			window = window.Clamp(bounds)
		}
		s.window = window
		return false, s.show(ctx)
	case "show":
		return false, s.show(ctx)
	case "refresh":
		return false, s.doRefresh(ctx)
	case "export":
		dir, formats := s.exportDir, args
		if len(args) > 0 && !report.IsFormat(args[0]) {
			dir, formats = args[0], args[1:]
		}
		return false, s.export(ctx, dir, formats...)
	default:
		return false, fmt.Errorf("unknown command %q, try help", fields[0])
	}
}

func (s *Session) selectDefaults(ctx context.Context) error {
	regions, err := s.dashboards.Regions(ctx)
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		return ingestion.ErrNoUsableData
	}
	if s.region == "" || !contains(regions, s.region) {
		s.region = regions[0]
	}
	if s.window == (consumption.Window{}) {
		window, err := s.dashboards.DateRange(ctx)
		if err != nil {
			return err
		}
		s.window = window
	}
	return nil
}

func (s *Session) listRegions(ctx context.Context) error {
	regions, err := s.dashboards.Regions(ctx)
	if err != nil {
		return err
	}
	for _, region := range regions {
		marker := " "
		if region == s.region {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s\n", marker, region)
	}
	window, err := s.dashboards.DateRange(ctx)
	if err == nil {
		fmt.Fprintf(s.out, "available dates: %s\n", window)
	}
	return nil
}

func (s *Session) selectRegion(ctx context.Context, region string) error {
	regions, err := s.dashboards.Regions(ctx)
	if err != nil {
		return err
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if !contains(regions, region) {
		return fmt.Errorf("%w: %s (available: %s)", ingestion.ErrUnknownRegion, region, strings.Join(regions, ", "))
	}
	s.region = region
	return s.show(ctx)
}

func (s *Session) show(ctx context.Context) error {
	dashboard, err := s.dashboards.Compute(ctx, s.region, s.window)
	if err != nil {
		return err
	}
	return report.WriteText(s.out, dashboard)
}

func (s *Session) doRefresh(ctx context.Context) error {
	if s.refresh == nil {
		return errors.New("refresh is not available")
	}
	changed, err := s.refresh(ctx)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(s.out, "sources unchanged")
		return nil
	}
	fmt.Fprintln(s.out, "sources reloaded")
	previous := s.region
	if err := s.selectDefaults(ctx); err != nil {
		return err
	}
	if previous != s.region {
		s.logger.Printf("console: region %s no longer available, showing %s", previous, s.region)
	}
	return s.show(ctx)
}

func (s *Session) export(ctx context.Context, dir string, formats ...string) error {
	dashboard, err := s.dashboards.Compute(ctx, s.region, s.window)
	if err != nil {
		return err
	}
	paths, err := report.Export(dir, dashboard, formats...)
	for _, path := range paths {
		fmt.Fprintf(s.out, "wrote %s\n", path)
	}
	return err
}

func (s *Session) prompt() {
	fmt.Fprintf(s.out, "[%s %s]> ", s.region, s.window)
}

func (s *Session) help() {
	fmt.Fprint(s.out, `commands:
  regions                         list regions and available dates
  region <ID>                     select a region
  range <YYYY-MM-DD> <YYYY-MM-DD> select an inclusive date window
  show                            render the dashboard again
  refresh                         reload sources if they changed
  export [dir] [txt|xlsx|pdf...]  write the dashboard to files
  help                            show this help
  quit                            leave
`)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
