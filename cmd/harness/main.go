// Command harness runs one adjudicated match between control programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/arenaharness/harness/internal/config"
	"github.com/arenaharness/harness/internal/maps"
	"github.com/arenaharness/harness/pkg/core"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion = "0.0.1"
	BuildDate      = "unknown"

	ProgramName = "harness"
)

const usageText = `usage:
  harness combat --teamA <name> --teamB <name> --teamAUrl <cmd> --teamBUrl <cmd>
                 [--map <name>] [--saveFile <path>] [--units <n>] [--config <dir>]
  harness navigation --teamA <name> --teamAUrl <cmd> --unitType <type>
                 [--map <name>] [--saveFile <path>] [--config <dir>]

Team URLs fall back to teams.a.url / teams.b.url in harness.cfg.json and to
HARNESS_TEAM_A_URL / HARNESS_TEAM_B_URL.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// usageError marks command line mistakes. They exit with status 2.
type usageError string

func (e usageError) Error() string { return string(e) }

// options is a parsed command line.
type options struct {
	mode      core.Mode
	teamA     string
	teamB     string
	urlA      string
	urlB      string
	unitType  core.RobotType
	mapName   string
	saveFile  string
	units     int
	configDir string

	// configErr is kept so it can be logged once logging is up.
	configErr error
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "harness: %v\n\n%s", err, usageText)
			return 2
		}
		// flag already printed the problem
		fmt.Fprint(stderr, usageText)
		return 2
	}

	if err := playMatch(ctx, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "harness: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	if len(args) == 0 {
		return options{}, usageError("missing command")
	}

	switch args[0] {
	case "combat":
		return parseCombat(args[1:], stderr)
	case "navigation":
		return parseNavigation(args[1:], stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stderr, usageText)
		return options{}, flag.ErrHelp
	default:
		return options{}, usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func parseCombat(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("combat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	teamA := fs.String("teamA", "", "name of team A")
	teamB := fs.String("teamB", "", "name of team B")
	urlA := fs.String("teamAUrl", "", "control program for team A")
	urlB := fs.String("teamBUrl", "", "control program for team B")
	mapName := fs.String("map", "", "map name (default "+maps.DefaultMap+")")
	saveFile := fs.String("saveFile", "", "replay output path (default derived from the match)")
	units := fs.Int("units", 0, "units spawned per side (default from config)")
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, usageError("unexpected arguments: " + strings.Join(fs.Args(), " "))
	}

	opts := options{
		mode:      core.ModeCombat,
		teamA:     strings.TrimSpace(*teamA),
		teamB:     strings.TrimSpace(*teamB),
		mapName:   *mapName,
		saveFile:  *saveFile,
		units:     *units,
		configDir: *configDir,
	}
	opts.configErr = config.Load(opts.configDir)
	opts.urlA = teamURL(*urlA, core.SideA)
	opts.urlB = teamURL(*urlB, core.SideB)

	switch {
	case opts.teamA == "" || opts.teamB == "":
		return options{}, usageError("combat needs --teamA and --teamB")
	case opts.urlA == "" || opts.urlB == "":
		return options{}, usageError("combat needs --teamAUrl and --teamBUrl")
	case opts.units < 0:
		return options{}, usageError("--units must be positive")
	}
	if opts.units == 0 {
		opts.units = config.GetMatchConfig().UnitsPerSide
	}
	return opts, nil
}

func parseNavigation(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("navigation", flag.ContinueOnError)
	fs.SetOutput(stderr)
	teamA := fs.String("teamA", "", "name of the probing team")
	urlA := fs.String("teamAUrl", "", "control program for the probing team")
	unitType := fs.String("unitType", "", "robot type of the probe")
	mapName := fs.String("map", "", "map name (default "+maps.DefaultMap+")")
	saveFile := fs.String("saveFile", "", "replay output path (default derived from the match)")
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, usageError("unexpected arguments: " + strings.Join(fs.Args(), " "))
	}

	opts := options{
		mode:      core.ModeNavigation,
		teamA:     strings.TrimSpace(*teamA),
		mapName:   *mapName,
		saveFile:  *saveFile,
		configDir: *configDir,
	}
	opts.configErr = config.Load(opts.configDir)
	opts.urlA = teamURL(*urlA, core.SideA)

	if opts.teamA == "" {
		return options{}, usageError("navigation needs --teamA")
	}
	if opts.urlA == "" {
		return options{}, usageError("navigation needs --teamAUrl")
	}
	if *unitType == "" {
		return options{}, usageError("navigation needs --unitType")
	}
	t, err := core.ParseRobotType(*unitType)
	if err != nil {
		return options{}, usageError(err.Error())
	}
	opts.unitType = t
	return opts, nil
}

// teamURL prefers the flag value over config and environment.
func teamURL(flagValue string, side core.Side) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return config.TeamURL(side)
}
