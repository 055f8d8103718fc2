package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"tee-wizard/app/controller"
	"tee-wizard/service"
)

type Controllers struct {
	Design     *controller.DesignController
	Product    *controller.ProductController
	ImageProxy *controller.ImageProxyController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every endpoint on mux. Saved mockups under
// mockupDir are served read-only at /generated-mockups/.
func SetupRoutes(mux *http.ServeMux, controllers *Controllers, mockupDir string) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Design routes
	mux.HandleFunc("/api/designs/generate", controllers.Design.Generate)
	mux.HandleFunc("/api/designs/preview", controllers.Design.Preview)
	mux.HandleFunc("/api/designs/reference", controllers.Design.UploadReference)
	mux.HandleFunc("/api/designs/recent", controllers.Design.Recent)

	// Vendor product creation (plus best-effort mockup)
	mux.HandleFunc("/api/products", controllers.Product.CreateProduct)

	// CORS image proxy for the editing canvas
	mux.HandleFunc("/api/image", controllers.ImageProxy.Proxy)

	// Generated mockups
	files := http.StripPrefix(service.MockupPublicPrefix, http.FileServer(http.Dir(mockupDir)))
	mux.Handle(service.MockupPublicPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// WithRequestLogging logs one line per request
func WithRequestLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
