package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/ipinfo/ipinfolib"
)

var (
	app = kingpin.New(
		"ipinfo",
		"IP address details with local cache and enrichment")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("IPINFO_DEBUG").
		Bool()
	configPath = app.Flag("config", "Path to the HJSON config.").
			Short('c').
			Envar("IPINFO_CONFIG").
			String()
	token = app.Flag("token", "Access token of remote API.").
		Short('t').
		Envar("IPINFO_TOKEN").
		String()

	lookupCommand = app.Command("lookup", "Show details of given addresses.")
	lookupIPs     = lookupCommand.Arg("ip", "IP addresses to look up.").
			Required().
			Strings()

	meCommand = app.Command("me", "Show details of the current public address.")

	mapCommand = app.Command("map", "Build a map of given addresses and print its URL.")
	mapIPs     = mapCommand.Arg("ip", "IP addresses to put on the map.").
			Required().
			Strings()

	serveCommand = app.Command("serve", "Run HTTP API.")
	serveListen  = serveCommand.Flag("listen", "host:port to listen on.").
			Short('l').
			String()
)

func init() {
	app.Version(ipinfolib.Version)
}

func main() {
	dotenvErr := loadDotenv(".env")
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	root := newRootLogger(*debug)

	if dotenvErr != nil {
		root.Error().Err(dotenvErr).Msg("Cannot load environment file")
		os.Exit(1)
	}

	if err := run(command, root); err != nil {
		root.Error().Err(err).Msg("Command has failed")
		os.Exit(1)
	}
}

// loadDotenv populates environment from a file. Absent file is fine.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}

	return nil
}

func run(command string, root zerolog.Logger) error {
	conf, err := parseConfig(afero.NewOsFs(), *configPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	if *token != "" {
		conf.Token = *token
	}

	if *serveListen != "" {
		conf.Listen = *serveListen

		if err := conf.Validate(); err != nil {
			return fmt.Errorf("incorrect listen flag: %w", err)
		}
	}

	client, err := makeClient(conf, root)
	if err != nil {
		return err
	}

	defer client.Shutdown()

	ctx, cancel := makeRootContext()
	defer cancel()

	switch command {
	case lookupCommand.FullCommand():
		return runLookup(ctx, client, *lookupIPs)
	case meCommand.FullCommand():
		return runMe(ctx, client)
	case mapCommand.FullCommand():
		return runMap(ctx, client, *mapIPs)
	case serveCommand.FullCommand():
		return serve(ctx, conf, client, root)
	}

	return fmt.Errorf("unknown command %s", command)
}

func runLookup(ctx context.Context, client *ipinfolib.Client, ips []string) error {
	started := time.Now()

	results, err := client.LookupBatch(ctx, ips)
	if err != nil {
		return fmt.Errorf("cannot lookup addresses: %w", err)
	}

	if err := printJSON(os.Stdout, results); err != nil {
		return err
	}

	failed := 0

	for _, v := range results {
		if !v.OK() {
			failed++
		}
	}

	printSummary(os.Stderr, len(results), failed, client.Stats().Snapshot(), time.Since(started))

	return nil
}

func runMe(ctx context.Context, client *ipinfolib.Client) error {
	result, err := client.LookupSelf(ctx)
	if err != nil {
		return fmt.Errorf("cannot lookup own address: %w", err)
	}

	return printJSON(os.Stdout, result)
}

func runMap(ctx context.Context, client *ipinfolib.Client, ips []string) error {
	url, err := client.GetMap(ctx, ips)
	if err != nil {
		return fmt.Errorf("cannot build a map: %w", err)
	}

	fmt.Fprintln(os.Stdout, url)

	return nil
}

func printJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)

	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("cannot encode output: %w", err)
	}

	return nil
}

func printSummary(w io.Writer, addresses, failed int, stats ipinfolib.UsageSnapshot, elapsed time.Duration) {
	fmt.Fprintf(w,
		"%s addresses (%s failed), %s cache hits, %s fetched in %s\n",
		humanize.Comma(int64(addresses)),
		humanize.Comma(int64(failed)),
		humanize.Comma(int64(stats.CacheHits)),
		humanize.Comma(int64(stats.FetchedAddresses)),
		elapsed.Round(time.Millisecond))
}
