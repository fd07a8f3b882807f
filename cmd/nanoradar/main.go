// cmd/nanoradar/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tamzrod/nanoradar-conftool/internal/bus"
	"github.com/tamzrod/nanoradar-conftool/internal/config"
	"github.com/tamzrod/nanoradar-conftool/internal/configurator"
	"github.com/tamzrod/nanoradar-conftool/internal/logging"
	"github.com/tamzrod/nanoradar-conftool/internal/radar"
	"github.com/tamzrod/nanoradar-conftool/internal/scanner"
	"github.com/tamzrod/nanoradar-conftool/internal/writer"
)

// version is set at build time via -ldflags.
var version = "dev"

// openBus is replaced in tests.
var openBus = bus.Open

const usage = `usage: nanoradar [-config file] [-i interface] [-c channel] [-b bitrate] <command> [args]

commands:
  config [-message-id 0x200] [-strict] [-set key=value ...]
        send one configuration request to the radar
  scan [-timeout 10s] [-wait 1s] [-every 0]
        listen for radar status frames and report every sensor found
  decode <hex>
        decode one 8 byte status frame, e.g. 8000000005000000
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "nanoradar: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("nanoradar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	cfgPath := fs.String("config", "", "YAML config file")
	iface := fs.String("i", "", "bus interface (socketcan, slcan)")
	channel := fs.String("c", "", "bus channel (can0) or serial device for slcan")
	bitrate := fs.Int("b", 0, "CAN bitrate")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	// decode works offline and needs no config.
	if cmd == "decode" {
		return runDecode(cmdArgs, stdout)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if *iface != "" {
		cfg.Bus.Interface = *iface
	}
	if *channel != "" {
		cfg.Bus.Channel = *channel
		if strings.EqualFold(cfg.Bus.Interface, "slcan") {
			cfg.Bus.Serial.Device = *channel
		}
	}
	if *bitrate != 0 {
		cfg.Bus.Bitrate = *bitrate
	}

	switch cmd {
	case "config":
		return runConfig(ctx, cfg, cmdArgs, stdout, stderr)
	case "scan":
		return runScan(ctx, cfg, cmdArgs, stdout, stderr)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// validated runs Validate then Normalize and builds the logger.
func validated(cfg *config.Config) (*logging.Logger, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return logging.New(cfg.Logging, version), nil
}

// ---- config ----

func runConfig(_ context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var sets settingsFlag
	msgID := messageIDFlag{id: cfg.Configure.MessageID}
	fs.Var(&msgID, "message-id", "configuration arbitration id")
	fs.Var(&sets, "set", "field=value (repeatable): "+strings.Join(radar.FieldNames(), ", "))
	strict := fs.Bool("strict", cfg.Configure.Strict, "reject unknown field names")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Configure.MessageID = msgID.id
	cfg.Configure.Strict = *strict
	cfg.Configure.Settings = append(cfg.Configure.Settings, sets...)

	log, err := validated(cfg)
	if err != nil {
		return err
	}

	// Build before opening the bus: a bad value must never reach the radar.
	req, err := configurator.Build(cfg.Configure.Settings, cfg.Configure.Strict)
	if err != nil {
		return err
	}

	b, err := openBus(cfg.Bus)
	if err != nil {
		return fmt.Errorf("bus open failed: %w", err)
	}
	defer b.Close()

	msg, err := configurator.Send(b, cfg.Configure.MessageID, req)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	log.Info("configuration sent",
		"interface", cfg.Bus.Interface,
		"channel", cfg.Bus.Channel,
		"message", msg.String(),
	)
	fmt.Fprintf(stdout, "sent configuration message: %s\n", msg)
	return nil
}

// ---- scan ----

func runScan(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	timeout := fs.Duration("timeout", cfg.Scan.Timeout(), "scan duration")
	wait := fs.Duration("wait", cfg.Scan.ReceiveWait(), "bounded receive wait")
	every := fs.Duration("every", 0, "repeat scans at this interval until interrupted (0 = scan once)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Scan.TimeoutMs = int(*timeout / time.Millisecond)
	cfg.Scan.ReceiveWaitMs = int(*wait / time.Millisecond)

	log, err := validated(cfg)
	if err != nil {
		return err
	}

	// ---- outputs ----
	out, closeOutputs, err := writer.Build(cfg.Outputs)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeOutputs(); err != nil {
			log.Warn("closing outputs failed", "error", err)
		}
	}()

	// ---- bus + scanner ----
	b, err := openBus(cfg.Bus)
	if err != nil {
		return fmt.Errorf("bus open failed: %w", err)
	}
	defer b.Close()

	sc, err := scanner.Build(cfg.Scan, b)
	if err != nil {
		return err
	}
	sc.SetLogger(log.With("component", "scanner"))

	log.Info("scanning for nano radars",
		"interface", cfg.Bus.Interface,
		"channel", cfg.Bus.Channel,
		"timeout", cfg.Scan.Timeout(),
	)

	if *every <= 0 {
		res, err := sc.Scan(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if err := printResult(stdout, res); err != nil {
			return err
		}
		return deliver(ctx, log, out, res)
	}

	ctx, cancel := context.WithCancel(ctx)

	outcomes := make(chan scanner.Outcome)
	go func() {
		sc.Run(ctx, *every, outcomes)
		close(outcomes)
	}()

	// The bus must outlive the scan goroutine.
	defer func() {
		cancel()
		for range outcomes {
		}
	}()

	for o := range outcomes {
		if o.Err != nil {
			return fmt.Errorf("scan failed: %w", o.Err)
		}
		if err := printResult(stdout, o.Result); err != nil {
			return err
		}
		if err := deliver(ctx, log, out, o.Result); err != nil {
			log.Error("delivering scan failed", "scan_id", o.Result.ScanID, "error", err)
		}
	}
	return nil
}

// printResult writes the user-facing report: one JSON object per sensor.
func printResult(w io.Writer, res *scanner.Result) error {
	if res.Empty() {
		_, err := fmt.Fprintln(w, "No nano radar devices found.")
		return err
	}

	for _, r := range res.Reports() {
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func deliver(ctx context.Context, log *logging.Logger, out writer.Writer, res *scanner.Result) error {
	if out == nil {
		return nil
	}
	if err := out.Write(ctx, res); err != nil {
		return err
	}
	log.Debug("scan delivered", "scan_id", res.ScanID, "devices", len(res.Devices))
	return nil
}

// ---- decode ----

func runDecode(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("decode: expected exactly one hex frame")
	}

	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(args[0])), "0x")
	f, err := radar.ParseFrame(s)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(radar.StatusFromFrame(f).Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}
