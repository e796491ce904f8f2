package server

import (
	"net/http"

	"collage/internal/gateway/config"
	"collage/internal/gateway/handler"
	"collage/internal/gateway/middleware"
)

type Routes struct {
	Receiver  http.Handler
	Sender    http.Handler
	Events    *handler.EventHub
	Admission *middleware.Admission
	App       http.Handler
}

func NewMux(cfg *config.Config, rt Routes) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(cfg.ReceiverPath, rt.Receiver)
	if cfg.Root {
		mux.Handle(cfg.SenderPath, rt.Sender)
	}
	mux.HandleFunc(cfg.EventsPath, rt.Events.HandleEvents)

	// Everything else is the served application, behind the admission filter.
	mux.Handle("/", rt.Admission.Wrap(rt.App))

	// The receiver answers its own preflight; everything else is handled by
	// the wrapper.
	return middleware.CORS(mux, cfg.ReceiverPath)
}
