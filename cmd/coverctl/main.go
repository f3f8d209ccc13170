// coverctl renders a cover sheet from a JSON submission without a server.
//
// Usage:
//
//	coverctl [--config coverd.yaml] [--format pdf|docx] [--variant name] [--out file]
//	         [--token delivery|simple|student] <submission.json|->
//
// The rendered file is written to --out (default Ass_<no>_<id>.<ext>) and
// the print token is printed on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/coverforge/config"
	"github.com/jonwraymond/coverforge/cover"
	"github.com/jonwraymond/coverforge/render"
	"github.com/jonwraymond/coverforge/service"
	"github.com/jonwraymond/coverforge/token"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "coverctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		configPath string
		format     string
		variant    string
		out        string
		tokenStyle string
	)
	flags := pflag.NewFlagSet("coverctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&configPath, "config", "", "path to the YAML config file (institution, logo)")
	flags.StringVarP(&format, "format", "f", "pdf", "output format: pdf or docx")
	flags.StringVar(&variant, "variant", "", "template variant: "+strings.Join(render.VariantNames(), ", "))
	flags.StringVarP(&out, "out", "o", "", "output path (default Ass_<assignmentNo>_<studentId>.<ext>)")
	flags.StringVar(&tokenStyle, "token", "delivery", "token style: delivery, simple or student")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("expected exactly one submission file, or - for stdin")
	}

	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}
	mint, err := tokenMinter(tokenStyle)
	if err != nil {
		return err
	}
	rec, err := readSubmission(flags.Arg(0), stdin)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	renderOpts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	svc, err := service.New(service.Options{Render: renderOpts, Variant: cfg.Render.Variant})
	if err != nil {
		return err
	}

	data, err := svc.RenderVariant(ctx, f, variant, rec)
	if err != nil {
		return err
	}
	if out == "" {
		out = service.Filename(rec, f)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(stderr, "wrote %s (%d bytes)\n", out, len(data))
	fmt.Fprintln(stdout, mint(rec, time.Now()))
	return nil
}

func tokenMinter(style string) (func(*cover.Record, time.Time) string, error) {
	switch style {
	case "delivery":
		return token.Generate, nil
	case "simple":
		return func(_ *cover.Record, at time.Time) string {
			return token.Simple(at, rand.New(rand.NewPCG(uint64(at.UnixNano()), 0)))
		}, nil
	case "student":
		return func(rec *cover.Record, at time.Time) string {
			return token.Student(rec, at, rand.New(rand.NewPCG(uint64(at.UnixNano()), 0)))
		}, nil
	default:
		return nil, fmt.Errorf("unknown token style %q", style)
	}
}

func readSubmission(path string, stdin io.Reader) (*cover.Record, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	sub, err := cover.DecodeSubmission(data)
	if err != nil {
		return nil, err
	}
	sub = cover.Sanitize(sub)
	if res := cover.Validate(sub); !res.IsValid {
		return nil, fmt.Errorf("invalid submission:\n  %s", strings.Join(res.Errors, "\n  "))
	}
	return sub.Record(), nil
}
