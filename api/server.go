package api

import (
	"fmt"
	"net/http"
	"time"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

var defaultPort int = 8000

type Server struct {
	port  int
	stage string
	rp    *RequestProcessor
}

type Option func(*Server) error

func NewServer(rp *RequestProcessor, optFuncs ...Option) *Server {
	server := Server{rp: rp, port: defaultPort, stage: StageDev}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	// Native clients send no Origin header and pass the default
	// check; browsers are only allowed everywhere in dev.
	if server.stage == StageDev {
		rp.allowAllOrigins()
	}
	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", s.port)
}

func (s *Server) Handler() http.Handler {
	return NewRouter(s.rp)
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 5,
	}
	return srv.ListenAndServe()
}
