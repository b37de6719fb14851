package main

import (
	"flag"
	"log"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	httpserver "github.com/CasparQuast/AlphaCathedral/internal/server/http"
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	// Fire and forget; headless boxes have no browser to open.
	_ = cmd.Start()
}

func main() {
	cfg, err := httpserver.LoadConfig()
	if err != nil {
		log.Fatalf("read environment: %v", err)
	}

	// Flag defaults come from the environment, so a set flag wins.
	addr := flag.String("addr", cfg.Addr, "listen address")
	webDir := flag.String("web", cfg.WebDir, "directory with the desktop board UI")
	mobileDir := flag.String("web-mobile", cfg.MobileWebDir, "directory with the mobile board UI")
	modelPath := flag.String("model", cfg.ModelPath, "path to the ONNX evaluation model, empty runs the heuristic")
	libPath := flag.String("lib", cfg.LibPath, "path to the onnxruntime shared library")
	noBrowser := flag.Bool("no-browser", false, "do not open the board in a browser")
	flag.Parse()

	h := httpserver.NewHandler()

	if *modelPath != "" {
		log.Printf("initializing NN with model %s and lib %s", *modelPath, *libPath)
		if err := h.Engine().InitNN(*modelPath, *libPath); err != nil {
			log.Fatalf("failed to initialize NN: %v", err)
		}
	}

	mux := httpserver.NewMux(h, *webDir, *mobileDir)

	log.Printf("listening on %s, serving static from %s", *addr, *webDir)

	if !*noBrowser {
		// Give the listener a beat to come up before pointing a browser
		// at it.
		go func() {
			time.Sleep(100 * time.Millisecond)
			openBrowser("http://127.0.0.1" + *addr)
		}()
	}

	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}
