package engine

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

const (
	PolicySize   = cathedral.NumActions
	MaxBatchSize = 64
	BatchTimeout = 1 * time.Millisecond
)

type evalRequest struct {
	state  *cathedral.State
	result chan *NNResult
}

// NNResult is one network answer. Probabilities are from White's fixed
// perspective: WinProb is White winning, LossProb is Black winning.
type NNResult struct {
	WinProb  float32
	LossProb float32
	DrawProb float32
	Score    float32
	Policy   []float32
}

// NNEvaluator owns one ONNX session and funnels every evaluation through
// a batching queue, so concurrent search goroutines share GPU batches.
type NNEvaluator struct {
	session *ort.AdvancedSession
	queue   chan evalRequest

	// Buffers backing the persistent tensors.
	boardInput []float32
	policy     []float32
	value      []float32

	inputs  []ort.Value
	outputs []ort.Value

	totalItems   int64
	totalBatches int64
}

const ansiReset = "\033[0m"

func init() {
	// ORT chatter goes through log; stderr renders red in PowerShell.
	log.SetOutput(os.Stdout)
}

func NewNNEvaluator(modelPath string, libPath string) (*NNEvaluator, error) {
	resolvedModel, err := resolveModelPath(modelPath)
	if err != nil {
		return nil, err
	}

	absCachePath, _ := filepath.Abs("trt_cache")
	os.MkdirAll(absCachePath, 0755)

	// TensorRT reads these from the process environment; several naming
	// generations are in circulation, set them all.
	setNativeEnv("ORT_TENSORRT_ENGINE_CACHE_ENABLE", "1")
	setNativeEnv("ORT_TENSORRT_ENGINE_CACHE_PATH", absCachePath)
	setNativeEnv("ORT_TENSORRT_CACHE_ENABLE", "1")
	setNativeEnv("ORT_TENSORRT_CACHE_PATH", absCachePath)
	setNativeEnv("ORT_TRT_ENGINE_CACHE_ENABLE", "1")
	setNativeEnv("ORT_TRT_CACHE_PATH", absCachePath)
	setNativeEnv("ORT_TENSORRT_TIMING_CACHE_ENABLE", "1")
	setNativeEnv("ORT_TENSORRT_TIMING_CACHE_PATH", absCachePath)
	setNativeEnv("ORT_TENSORRT_FP16_ENABLE", "1")
	setNativeEnv("ORT_TENSORRT_MAX_WORKSPACE_SIZE", "2147483648")

	// Error level only, the provider fallbacks below are expected.
	setNativeEnv("ORT_LOGGING_LEVEL", "3")

	if !ort.IsInitialized() {
		absLibPath, err := resolveORTSharedLibraryPath(libPath)
		if err != nil {
			return nil, err
		}
		libDir := filepath.Dir(absLibPath)
		prependPathEnv("PATH", libDir)
		configureORTSearchPath(libDir)

		ort.SetSharedLibraryPath(absLibPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
		fmt.Print(ansiReset) // ORT may leave a color code behind
	}

	boardInput := make([]float32, MaxBatchSize*NumObservationValues)
	policy := make([]float32, MaxBatchSize*PolicySize)
	value := make([]float32, MaxBatchSize*3)

	boardShape := ort.NewShape(MaxBatchSize, int64(NumPlanes),
		int64(cathedral.BoardHeight), int64(cathedral.BoardWidth))
	policyShape := ort.NewShape(MaxBatchSize, int64(PolicySize))
	valueShape := ort.NewShape(MaxBatchSize, 3)

	boardTensor, err := ort.NewTensor(boardShape, boardInput)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	policyTensor, err := ort.NewTensor(policyShape, policy)
	if err != nil {
		boardTensor.Destroy()
		return nil, fmt.Errorf("create policy tensor: %w", err)
	}
	valueTensor, err := ort.NewTensor(valueShape, value)
	if err != nil {
		boardTensor.Destroy()
		policyTensor.Destroy()
		return nil, fmt.Errorf("create value tensor: %w", err)
	}

	inputNames := []string{"board_inputs"}
	outputNames := []string{"policy", "value"}
	inputs := []ort.Value{boardTensor}
	outputs := []ort.Value{policyTensor, valueTensor}

	var session *ort.AdvancedSession

	providers := []struct {
		name  string
		setup func(*ort.SessionOptions) error
	}{
		{"TensorRT", func(so *ort.SessionOptions) error {
			trtOpts, e := ort.NewTensorRTProviderOptions()
			if e != nil {
				return e
			}
			defer trtOpts.Destroy()
			trtOpts.Update(map[string]string{
				"device_id":               "0",
				"trt_engine_cache_enable": "1",
				"trt_engine_cache_path":   absCachePath,
				"trt_fp16_enable":         "1",
				"trt_max_workspace_size":  "2147483648",
				"trt_timing_cache_enable": "1",
				"trt_timing_cache_path":   absCachePath,
			})
			return so.AppendExecutionProviderTensorRT(trtOpts)
		}},
		{"CUDA", func(so *ort.SessionOptions) error {
			cudaOpts, e := ort.NewCUDAProviderOptions()
			if e != nil {
				return e
			}
			defer cudaOpts.Destroy()
			return so.AppendExecutionProviderCUDA(cudaOpts)
		}},
		{"DirectML", func(so *ort.SessionOptions) error {
			return so.AppendExecutionProviderDirectML(0)
		}},
		{"CPU", func(so *ort.SessionOptions) error { return nil }},
	}

	var success bool
	for _, p := range providers {
		log.Printf("NN: attempting to initialize with %s...%s", p.name, ansiReset)
		so, _ := ort.NewSessionOptions()
		_ = so.SetLogSeverityLevel(3)

		if err := p.setup(so); err != nil {
			log.Printf("NN: %s setup failed: %v%s", p.name, err, ansiReset)
			so.Destroy()
			continue
		}

		s, errS := ort.NewAdvancedSession(resolvedModel, inputNames, outputNames, inputs, outputs, so)
		if errS != nil {
			log.Printf("NN: %s session creation failed: %v%s", p.name, errS, ansiReset)
			so.Destroy()
			continue
		}

		log.Printf("NN: warming up %s...%s", p.name, ansiReset)
		if errRun := s.Run(); errRun != nil {
			log.Printf("NN: %s warmup failed: %v%s", p.name, errRun, ansiReset)
			s.Destroy()
			so.Destroy()
			continue
		}

		log.Printf("NN: initialized with %s.%s", p.name, ansiReset)
		session = s
		success = true
		so.Destroy()
		break
	}

	if !success {
		boardTensor.Destroy()
		policyTensor.Destroy()
		valueTensor.Destroy()
		return nil, fmt.Errorf("failed to initialize NN with any provider")
	}

	n := &NNEvaluator{
		session:    session,
		queue:      make(chan evalRequest, MaxBatchSize*10),
		boardInput: boardInput,
		policy:     policy,
		value:      value,
		inputs:     inputs,
		outputs:    outputs,
	}

	go n.batchLoop()

	return n, nil
}

func (n *NNEvaluator) Close() {
	if n.session != nil {
		n.session.Destroy()
	}
	for _, v := range n.inputs {
		v.Destroy()
	}
	for _, v := range n.outputs {
		v.Destroy()
	}
}

// Evaluate blocks until the position has gone through a batch. Safe to
// call from any number of goroutines.
func (n *NNEvaluator) Evaluate(s *cathedral.State) (*NNResult, error) {
	resChan := make(chan *NNResult, 1)
	n.queue <- evalRequest{state: s, result: resChan}
	res := <-resChan
	if res == nil {
		return nil, fmt.Errorf("nn session run failed")
	}
	return res, nil
}

func (n *NNEvaluator) batchLoop() {
	requests := make([]evalRequest, 0, MaxBatchSize)
	for {
		requests = requests[:0]
		req, ok := <-n.queue
		if !ok {
			return
		}
		requests = append(requests, req)

		timeout := time.After(BatchTimeout)
	collect:
		for len(requests) < MaxBatchSize {
			select {
			case r := <-n.queue:
				requests = append(requests, r)
			case <-timeout:
				break collect
			}
		}
		n.processBatch(requests)
	}
}

func (n *NNEvaluator) processBatch(requests []evalRequest) {
	batchSize := len(requests)
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(idx int, r evalRequest) {
			defer wg.Done()
			offset := idx * NumObservationValues
			EncodeObservation(r.state, r.state.CurrentPlayer(),
				n.boardInput[offset:offset+NumObservationValues])
		}(i, req)
	}
	wg.Wait()

	if batchSize < MaxBatchSize {
		n.clearBatchTail(batchSize)
	}

	if err := n.session.Run(); err != nil {
		log.Printf("NN: session run error: %v%s", err, ansiReset)
		for _, req := range requests {
			req.result <- nil
		}
		return
	}

	n.totalBatches++
	n.totalItems += int64(batchSize)

	for i, req := range requests {
		// Value head: 3 logits, fixed perspective [white, black, draw].
		v := n.value[i*3 : i*3+3]

		maxLogit := v[0]
		if v[1] > maxLogit {
			maxLogit = v[1]
		}
		if v[2] > maxLogit {
			maxLogit = v[2]
		}

		e0 := math.Exp(float64(v[0] - maxLogit))
		e1 := math.Exp(float64(v[1] - maxLogit))
		e2 := math.Exp(float64(v[2] - maxLogit))
		sum := e0 + e1 + e2

		whiteWin := float32(e0 / sum)
		blackWin := float32(e1 / sum)
		draw := float32(e2 / sum)

		res := &NNResult{
			Policy:   make([]float32, PolicySize),
			WinProb:  whiteWin,
			LossProb: blackWin,
			DrawProb: draw,
			Score:    whiteWin - blackWin,
		}
		copy(res.Policy, n.policy[i*PolicySize:(i+1)*PolicySize])
		req.result <- res
	}

	if n.totalBatches%500 == 0 {
		log.Printf("NN stats: avg batch size=%.1f, last sample win prob=%.4f",
			float64(n.totalItems)/float64(n.totalBatches), n.value[0])
	}
}

func (n *NNEvaluator) clearBatchTail(startIdx int) {
	for i := startIdx * NumObservationValues; i < MaxBatchSize*NumObservationValues; i++ {
		n.boardInput[i] = 0
	}
}
