package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"pedegas/internal/api/delivery"
	"pedegas/internal/api/deliveryman"
	"pedegas/internal/api/inventory"
	"pedegas/internal/api/station"
	"pedegas/internal/api/user"
	"pedegas/internal/domain"
	"pedegas/internal/pkg/cache"
	"pedegas/internal/pkg/middleware"
)

// Handlers agrupa os handlers já inicializados para injeção no roteador.
type Handlers struct {
	User        *user.Handler
	Station     *station.Handler
	Inventory   *inventory.Handler
	Delivery    *delivery.Handler
	Deliveryman *deliveryman.Handler
}

// RateLimit agrupa os parâmetros do rate limiter global.
type RateLimit struct {
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, cacheClient cache.Client, limit RateLimit) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc)
	// Gestão do posto é restrita ao dono e ao gerente; entregadores
	// autenticam mas só acessam o ciclo de vida dos pedidos.
	managers := middleware.PermissionMiddleware(domain.RoleOwner, domain.RoleManager)

	// --- 1. Rotas de Health Check e documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.Handler())

	// --- 2. Rotas públicas de conta (v1) ---
	mux.HandleFunc("/v1/register", h.User.RegisterUserHandler)
	mux.HandleFunc("/v1/login", h.User.LoginUserHandler)
	mux.HandleFunc("/v1/password-reset", h.User.RequestPasswordResetHandler)
	mux.HandleFunc("/v1/password-reset/confirm", h.User.ResetPasswordHandler)

	// --- 3. Perfil do posto (v1) ---
	mux.HandleFunc("/v1/stations/me", auth(managers(h.Station.ProfileHandler)))

	// --- 4. Estoque (v1) ---
	mux.HandleFunc("/v1/inventory", auth(managers(h.Inventory.CollectionHandler)))
	mux.HandleFunc("/v1/inventory/", auth(managers(h.Inventory.ItemHandler)))

	// --- 5. Pedidos de entrega (v1) ---
	// O ciclo de vida (aceitar, iniciar, concluir) também é usado pelo
	// aplicativo do entregador, então basta estar autenticado.
	mux.HandleFunc("/v1/deliveries", auth(h.Delivery.CollectionHandler))
	mux.HandleFunc("/v1/deliveries/", auth(h.Delivery.ItemHandler))

	// --- 6. Entregadores (v1) ---
	mux.HandleFunc("/v1/deliverymen", auth(managers(h.Deliveryman.CollectionHandler)))
	mux.HandleFunc("/v1/deliverymen/", auth(managers(h.Deliveryman.ItemHandler)))

	// --- 7. Middlewares globais ---
	return middleware.RateLimiter(cacheClient, limit.MaxRequests, limit.Period)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
