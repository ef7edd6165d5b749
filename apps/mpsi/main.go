//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/markkurossi/mpsi/field"
	"github.com/markkurossi/mpsi/p2p"
	"github.com/markkurossi/mpsi/psi"
	"github.com/markkurossi/mpsi/sets"
	"github.com/markkurossi/mpsi/solver"
	"github.com/markkurossi/mpsi/vole"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// onOff implements an on/off flag value.
type onOff bool

func (v *onOff) String() string {
	if v != nil && bool(*v) {
		return "on"
	}
	return "off"
}

func (v *onOff) Set(value string) error {
	switch value {
	case "on", "true", "1":
		*v = true
	case "off", "false", "0":
		*v = false
	default:
		return fmt.Errorf("invalid value '%s', expected on or off", value)
	}
	return nil
}

func main() {
	numParties := psi.DefaultNumParties
	setSize := psi.DefaultSetSize
	commonSize := 5
	voleName := "lpn"
	solverName := "paxos"
	channelName := "unix"
	port := psi.DefaultPort
	threads := onOff(true)

	flag.IntVar(&numParties, "N", numParties, "number of parties")
	flag.IntVar(&numParties, "num_parties", numParties, "number of parties")
	flag.IntVar(&setSize, "n", setSize, "set size")
	flag.IntVar(&setSize, "set_size", setSize, "set size")
	flag.IntVar(&commonSize, "m", commonSize, "common set size")
	flag.IntVar(&commonSize, "common_size", commonSize, "common set size")
	flag.StringVar(&voleName, "v", voleName, "VOLE construction: lpn, ot")
	flag.StringVar(&voleName, "vole", voleName, "VOLE construction: lpn, ot")
	flag.StringVar(&solverName, "s", solverName,
		"solver: paxos, vandelmonde")
	flag.StringVar(&solverName, "solver", solverName,
		"solver: paxos, vandelmonde")
	flag.StringVar(&channelName, "c", channelName,
		"channel: unix, tcp, cross-beam")
	flag.StringVar(&channelName, "channel", channelName,
		"channel: unix, tcp, cross-beam")
	flag.IntVar(&port, "p", port, "TCP channel base port")
	flag.IntVar(&port, "port", port, "TCP channel base port")
	flag.Var(&threads, "t", "per-peer threads: on, off")
	flag.Var(&threads, "threads", "per-peer threads: on, off")
	verbose := flag.Bool("verbose", false, "verbose output")
	reveal := flag.Bool("reveal", false, "reveal intersection elements")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()

	cfg := psi.NewConfig()
	cfg.Rand = rand.Reader
	cfg.Log = log
	cfg.NumParties = numParties
	cfg.SetSize = setSize
	cfg.Port = port
	cfg.Threads = bool(threads)
	if *reveal {
		cfg.Output = psi.Elements
	}

	var err error
	cfg.Vole.Construction, err = vole.ParseConstruction(voleName)
	if err != nil {
		fail(err)
	}
	cfg.Solver, err = solver.Parse(solverName)
	if err != nil {
		fail(err)
	}
	cfg.Channel, err = p2p.ParseKind(channelName)
	if err != nil {
		fail(err)
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	input, err := sets.Generate(cfg.Rand, numParties, setSize, commonSize)
	if err != nil {
		fail(err)
	}
	if *verbose {
		for i, set := range input {
			fmt.Printf("P%d:\n", i)
			for _, e := range set {
				fmt.Printf("  %v\n", e)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := psi.Run(ctx, cfg, input)
	if err != nil {
		log.Error().Stack().Err(err).Msg("session aborted")
		stop()
		os.Exit(1)
	}
	leader := results[psi.Leader]

	fmt.Printf("Intersection: %d\n", leader.Cardinality)
	if *reveal {
		for _, e := range leader.Elements {
			fmt.Printf("  %v\n", e)
		}
	}
	if *verbose {
		expected := sets.Intersection(input)
		fmt.Printf("Expected    : %d\n", len(expected))
		if !match(leader, expected, *reveal) {
			fmt.Printf("Result mismatch\n")
		}
		leader.Timing.Print(os.Stdout, leader.Stats)
	}
}

func match(result *psi.Result, expected []field.Element, elements bool) bool {
	if result.Cardinality != len(expected) {
		return false
	}
	if !elements {
		return true
	}
	for _, e := range result.Elements {
		if !slices.Contains(expected, e) {
			return false
		}
	}
	return true
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "mpsi: %v\n", err)
	os.Exit(1)
}
