package api

import (
	"database/sql"
	"net/http"
	"net/http/pprof"
	"runtime"

	"arbitrage/internal/api/handlers"
	"arbitrage/internal/api/middleware"
	"arbitrage/internal/api/stream"
	"arbitrage/internal/repository"
	"arbitrage/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	DealAlerts     *service.DealAlertService
	Items          *service.MonitoredItemService
	Keywords       *service.KeywordService
	Rejections     *service.RejectionService
	Listings       *service.ListingService
	Presets        *repository.ListingPresetRepository
	Templates      *repository.ConditionTemplateRepository
	DB             *sql.DB
	Hub            *stream.Hub
	HealthReporter handlers.JobHealthReporter
	APIKey         string
	Log            *zap.Logger
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех API endpoints.
// Регистрирует handlers для каждого маршрута.
// Применяет middleware к группам маршрутов.
// Организует версионирование API (v1).
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /deals/
//	│   ├── GET / - активные алерты (пагинация)
//	│   ├── GET /history - вся история для анализа
//	│   ├── GET /stats - доля отклонённых алертов
//	│   ├── GET /{id} - один алерт
//	│   ├── POST /{id}/reject - отклонить с причиной
//	│   └── POST /{id}/list - пометить выставленным
//	├── /items/
//	│   ├── GET /{id} - один отслеживаемый лот
//	│   ├── POST / - поставить лот на мониторинг
//	│   └── POST /{id}/delist - снять листинг вручную
//	├── /keywords/
//	│   ├── GET / - все слова
//	│   ├── POST / - добавить слово вручную
//	│   ├── DELETE /{id} - снять с наблюдения
//	│   ├── POST /{id}/deactivate - приостановить
//	│   └── POST /{id}/reactivate - возобновить
//	├── /candidates/
//	│   ├── GET / - кандидаты, ожидающие решения
//	│   ├── POST /{id}/approve - подтвердить
//	│   └── POST /{id}/reject - отклонить
//	├── /rejections/
//	│   ├── GET /?type=... - активные паттерны заданного типа
//	│   └── POST /{id}/deactivate - выключить ложное срабатывание
//	├── /listings/
//	│   ├── POST / - создать листинг по подтверждённому лоту
//	│   ├── POST /{sku}/price - синхронизировать цену
//	│   └── POST /{sku}/delist - снять листинг
//	├── /presets/
//	│   ├── GET /?asin=... - история пресетов по ASIN
//	│   └── POST / - сохранить новый пресет
//	└── /condition-templates/
//	    └── GET / - все шаблоны описания состояния
//
// /ws/stream - WebSocket push новых алертов и прогресса цикла обнаружения
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. X-API-Key (только для /api/v1, когда APIKey настроен)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	var dealHandler *handlers.DealAlertHandler
	if deps != nil && deps.DealAlerts != nil {
		dealHandler = handlers.NewDealAlertHandler(deps.DealAlerts)
	}

	var itemHandler *handlers.MonitoredItemHandler
	if deps != nil && deps.Items != nil {
		itemHandler = handlers.NewMonitoredItemHandler(deps.Items)
	}

	var keywordHandler *handlers.KeywordHandler
	if deps != nil && deps.Keywords != nil {
		keywordHandler = handlers.NewKeywordHandler(deps.Keywords)
	}

	var rejectionHandler *handlers.RejectionHandler
	if deps != nil && deps.Rejections != nil {
		rejectionHandler = handlers.NewRejectionHandler(deps.Rejections)
	}

	var listingHandler *handlers.ListingHandler
	if deps != nil && deps.Listings != nil {
		listingHandler = handlers.NewListingHandler(deps.Listings)
	}

	var referenceHandler *handlers.ReferenceHandler
	if deps != nil && deps.Presets != nil && deps.Templates != nil {
		referenceHandler = handlers.NewReferenceHandler(deps.Presets, deps.Templates)
	}

	var healthHandler *handlers.HealthHandler
	if deps != nil {
		healthHandler = handlers.NewHealthHandler(deps.DB, deps.HealthReporter)
	}

	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	if deps != nil {
		apiV1.Use(middleware.APIKey(deps.APIKey))
	}

	if dealHandler != nil {
		apiV1.HandleFunc("/deals", dealHandler.GetActiveDeals).Methods("GET")
		apiV1.HandleFunc("/deals/history", dealHandler.GetHistory).Methods("GET")
		apiV1.HandleFunc("/deals/stats", dealHandler.GetStats).Methods("GET")
		apiV1.HandleFunc("/deals/{id}", dealHandler.GetDeal).Methods("GET")
		apiV1.HandleFunc("/deals/{id}/reject", dealHandler.RejectDeal).Methods("POST")
		apiV1.HandleFunc("/deals/{id}/list", dealHandler.MarkListed).Methods("POST")
	}

	if itemHandler != nil {
		apiV1.HandleFunc("/items", itemHandler.StartMonitoring).Methods("POST")
		apiV1.HandleFunc("/items/{id}", itemHandler.GetItem).Methods("GET")
		apiV1.HandleFunc("/items/{id}/delist", itemHandler.Delist).Methods("POST")
	}

	if keywordHandler != nil {
		apiV1.HandleFunc("/keywords", keywordHandler.GetKeywords).Methods("GET")
		apiV1.HandleFunc("/keywords", keywordHandler.AddKeyword).Methods("POST")
		apiV1.HandleFunc("/keywords/{id}", keywordHandler.RemoveKeyword).Methods("DELETE")
		apiV1.HandleFunc("/keywords/{id}/deactivate", keywordHandler.Deactivate).Methods("POST")
		apiV1.HandleFunc("/keywords/{id}/reactivate", keywordHandler.Reactivate).Methods("POST")

		apiV1.HandleFunc("/candidates", keywordHandler.GetPendingCandidates).Methods("GET")
		apiV1.HandleFunc("/candidates/{id}/approve", keywordHandler.ApproveCandidate).Methods("POST")
		apiV1.HandleFunc("/candidates/{id}/reject", keywordHandler.RejectCandidate).Methods("POST")
	}

	if rejectionHandler != nil {
		apiV1.HandleFunc("/rejections", rejectionHandler.GetActivePatterns).Methods("GET")
		apiV1.HandleFunc("/rejections/{id}/deactivate", rejectionHandler.Deactivate).Methods("POST")
	}

	if listingHandler != nil {
		apiV1.HandleFunc("/listings", listingHandler.CreateListing).Methods("POST")
		apiV1.HandleFunc("/listings/{sku}/price", listingHandler.SyncPrice).Methods("POST")
		apiV1.HandleFunc("/listings/{sku}/delist", listingHandler.Delist).Methods("POST")
	}

	if referenceHandler != nil {
		apiV1.HandleFunc("/presets", referenceHandler.GetPresetHistory).Methods("GET")
		apiV1.HandleFunc("/presets", referenceHandler.CreatePreset).Methods("POST")
		apiV1.HandleFunc("/condition-templates", referenceHandler.GetConditionTemplates).Methods("GET")
	}

	// WebSocket route для real-time обновлений: новые алерты и прогресс
	// циклов движка обнаружения.
	if deps != nil && deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			stream.ServeWS(deps.Hub, deps.Log, w, r)
		}).Methods("GET")
	}

	// Health check endpoint
	if healthHandler != nil {
		router.HandleFunc("/health", healthHandler.GetHealth).Methods("GET")
	} else {
		router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		}).Methods("GET")
	}

	// ============================================================
	// Prometheus metrics endpoint
	// ============================================================
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// ============================================================
	// pprof endpoints для профилирования
	// ============================================================
	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(middleware.DebugAuth)

	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)

	debug.HandleFunc("/heap", func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler("heap").ServeHTTP(w, r)
	})
	debug.HandleFunc("/goroutine", func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler("goroutine").ServeHTTP(w, r)
	})
	debug.HandleFunc("/block", func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler("block").ServeHTTP(w, r)
	})
	debug.HandleFunc("/threadcreate", func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler("threadcreate").ServeHTTP(w, r)
	})
	debug.HandleFunc("/mutex", func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler("mutex").ServeHTTP(w, r)
	})
	debug.HandleFunc("/allocs", func(w http.ResponseWriter, r *http.Request) {
		pprof.Handler("allocs").ServeHTTP(w, r)
	})

	router.HandleFunc("/debug/runtime", func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{`))
		w.Write([]byte(`"goroutines":` + itoa(runtime.NumGoroutine()) + `,`))
		w.Write([]byte(`"heap_alloc_mb":` + ftoa(float64(m.HeapAlloc)/1024/1024) + `,`))
		w.Write([]byte(`"heap_sys_mb":` + ftoa(float64(m.HeapSys)/1024/1024) + `,`))
		w.Write([]byte(`"num_gc":` + itoa(int(m.NumGC)) + `,`))
		w.Write([]byte(`"gc_pause_total_ms":` + ftoa(float64(m.PauseTotalNs)/1e6)))
		w.Write([]byte(`}`))
	}).Methods("GET")

	return router
}

// Вспомогательные функции для JSON без fmt
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	pos := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		pos--
		b[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		b[pos] = '-'
	}
	return string(b[pos:])
}

func ftoa(f float64) string {
	i := int(f * 100)
	whole := i / 100
	frac := i % 100
	if frac < 0 {
		frac = -frac
	}
	fracStr := itoa(frac)
	if len(fracStr) == 1 {
		fracStr = "0" + fracStr
	}
	return itoa(whole) + "." + fracStr
}
