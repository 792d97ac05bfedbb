package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/pborman/getopt/v2"
	"github.com/reallyasi9/psn/internal/config"
	"github.com/reallyasi9/psn/internal/perm"
	"github.com/reallyasi9/psn/internal/psn"
	"github.com/reallyasi9/psn/internal/store"
	"github.com/schollz/progressbar/v3"
)

var (
	helpFlag   = getopt.BoolLong("help", 'h', "display help")
	configFile = getopt.StringLong("config", 'c', "", "YAML file with run settings; arguments and flags override it", "file")
	verifyMod  = getopt.Uint64Long("verify", 'v', 0, "extra modulus to recount with and check the result against", "modulus")
	progress   = getopt.BoolLong("progress", 'p', "show a progress bar")
	project    = getopt.StringLong("project", 0, os.Getenv("GCP_PROJECT"), "Google Cloud project to store results in", "project")
	reuse      = getopt.BoolLong("reuse", 'r', "print a stored result instead of counting when one exists")
	verbose    = getopt.BoolLong("verbose", 0, "log engine statistics")
	cpuprofile = getopt.StringLong("cpuprofile", 0, "", "write cpu profile to file", "file")
)

func main() {
	getopt.SetParameters("n [modulus ...]")
	getopt.Parse()

	if *helpFlag {
		getopt.PrintUsage(os.Stderr)
		return
	}

	args := getopt.Args()
	if len(args) == 0 && *configFile == "" {
		fmt.Println("psn: compute the number of primitive sorting networks on n elements")
		getopt.PrintUsage(os.Stdout)
		return
	}

	if err := run(context.Background(), args); err != nil {
		log.Println(err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the moduli were too small to trust the result and 1 for any other failure.
func exitCode(err error) int {
	if errors.Is(err, psn.ErrUnstable) {
		return 2
	}
	return 1
}

func run(ctx context.Context, args []string) (err error) {
	c, err := settings(args)
	if err != nil {
		return err
	}
	log.Printf("run settings:\n%s", c)

	if *cpuprofile != "" {
		f, ferr := os.Create(*cpuprofile)
		if ferr != nil {
			return fmt.Errorf("trouble creating cpu profile: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	var s *store.Store
	if c.Project != "" {
		s, err = store.New(ctx, c.Project)
		if err != nil {
			return err
		}
		defer s.Close()

		if *reuse {
			r, err := s.Lookup(ctx, c.N)
			switch {
			case err == nil:
				fmt.Printf("Result: %s (stored, verified: %t)\n", r.Count, r.Verified)
				return nil
			case errors.Is(err, store.ErrNotFound):
				log.Printf("no stored result for n = %d: counting", c.N)
			default:
				return err
			}
		}
	}

	start := time.Now()
	result, err := count(ctx, c)
	elapsed := time.Since(start)
	if errors.Is(err, psn.ErrUnstable) {
		return fmt.Errorf("%w: supply more or larger moduli", err)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Time: %d milliseconds\n", elapsed.Milliseconds())
	fmt.Printf("Result: %v\n", result)

	if s != nil {
		if _, err := s.Save(ctx, store.NewResult(c.N, result, c.Moduli, c.Verify != 0, elapsed)); err != nil {
			return err
		}
	}
	return nil
}

// settings merges the config file, positional arguments and flags, in increasing order of precedence.
func settings(args []string) (*config.Config, error) {
	c := &config.Config{}
	if *configFile != "" {
		var err error
		c, err = config.Load(*configFile)
		if err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("trouble parsing n %q: %w", args[0], err)
		}
		c.N = n
	}
	if len(args) > 1 {
		c.Moduli = make([]uint64, len(args)-1)
		for i, arg := range args[1:] {
			m, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("trouble parsing modulus %q: %w", arg, err)
			}
			c.Moduli[i] = m
		}
	}

	if getopt.IsSet("verify") {
		c.Verify = *verifyMod
	}
	if getopt.IsSet("progress") {
		c.Progress = *progress
	}
	if getopt.IsSet("project") || c.Project == "" {
		c.Project = *project
	}

	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func count(ctx context.Context, c *config.Config) (*big.Int, error) {
	var opts []psn.Option
	if *verbose {
		opts = append(opts, psn.WithLogger(log.Default()))
	}
	if c.Progress {
		bar := progressbar.Default(perm.NumberOfPermutations(c.N).Int64(), fmt.Sprintf("n = %d", c.N))
		defer bar.Finish()
		opts = append(opts, psn.WithProgress(showProgress(bar)))
	}

	if c.Verify != 0 {
		return psn.Verify(ctx, c.N, c.Moduli, c.Verify, opts...)
	}
	return psn.Count(ctx, c.N, c.Moduli, opts...)
}

type progressSetter interface {
	Set64(int64) error
}

// showProgress moves bar along with the engine. Only the first failure to draw it is logged.
func showProgress(bar progressSetter) psn.ProgressFunc {
	var once sync.Once
	return func(done, total uint64) {
		if err := bar.Set64(int64(done)); err != nil {
			once.Do(func() { log.Printf("trouble drawing progress bar: %v", err) })
		}
	}
}
