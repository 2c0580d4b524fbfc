package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	bookPath   = flag.String("book", "", "path to a Polyglot opening book (.bin)")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	// Multi-threaded search enabled (Lazy SMP)
	eng := engine.NewEngine(64)

	path := *bookPath
	if path == "" {
		path = os.Getenv("CHESSPLAY_BOOK")
	}
	if path == "" {
		path = defaultBookPath()
	}
	if path != "" {
		if err := eng.LoadBook(path); err != nil {
			log.Printf("opening book not loaded from %s: %v", path, err)
		} else {
			log.Printf("opening book loaded from %s", path)
		}
	}

	protocol := uci.New(eng)
	protocol.Run()
}

// defaultBookPath checks a couple of conventional locations for a Polyglot
// book so the engine can play from book without any flags on most setups.
func defaultBookPath() string {
	candidates := []string{
		"./book.bin",
		filepath.Join(getHomeDir(), ".chessplay", "book.bin"),
	}
	for _, p := range candidates {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
