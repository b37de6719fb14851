// Package mobile is the gomobile-facing entry point: a blocking-free
// server start with string-only parameters, since the generated
// bindings cannot pass Go structs across.
package mobile

import (
	"log"
	"net/http"

	httpserver "github.com/CasparQuast/AlphaCathedral/internal/server/http"
)

// StartServer starts the local play server.
// webDir: physical path to the extracted board UI assets
// modelPath: physical path to the extracted .onnx model, empty runs the
// heuristic engine
// libPath: physical path to libonnxruntime.so
// port: port to listen on, e.g. "2888"
func StartServer(webDir string, modelPath string, libPath string, port string) {
	h := httpserver.NewHandler()

	if modelPath != "" {
		if err := h.Engine().InitNN(modelPath, libPath); err != nil {
			log.Printf("failed to initialize NN: %v", err)
		}
	}

	// The one bundled asset dir serves both views.
	mux := httpserver.NewMux(h, webDir, webDir)

	// Run in background so the Android UI thread never blocks.
	go func() {
		if err := http.ListenAndServe("127.0.0.1:"+port, mux); err != nil {
			log.Printf("server error: %v", err)
		}
	}()
}
