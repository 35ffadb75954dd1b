package cli

import (
	"net/http"

	"dataroom-server/internal/handler"
	"dataroom-server/internal/ports"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type middleware = func(http.Handler) http.Handler

func setupHealthRoutes(r chi.Router, h *handler.HealthHandler) {
	r.Get("/health", h.Health)
	r.Get("/health/detailed", h.Detailed)
}

func setupSwaggerRoutes(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, auth middleware) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", h.GetCurrentUser)
			r.Head("/me", h.GetCurrentUser)
		})
		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
			r.Post("/google", h.LoginWithGoogle)
			r.Post("/refresh", h.RefreshToken)
			r.Delete("/{token}", h.Logout)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, auth middleware) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.RegisterUser)

		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Get("/users/me", h.GetMe)
			r.Patch("/users/me", h.UpdateMe)

			r.Get("/users", h.ListUsers)
			r.Head("/users", h.ListUsers)

			r.Route("/users/{id}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Head("/", h.GetUser)
				r.Patch("/active", h.SetActive)
			})
		})
	})
}

func setupShareRoutes(r chi.Router, h *handler.ShareHandler) {
	r.Route("/shares", func(r chi.Router) {
		r.Get("/", h.ListShares)
		r.Post("/", h.CreateShare)
		r.Patch("/{share_id}", h.UpdateShare)
		r.Delete("/{share_id}", h.RemoveShare)
	})
}

func setupDocumentRoutes(r chi.Router, h *handler.DocumentHandler, shares *handler.ShareHandler, auth middleware) {
	r.Route("/api/docs", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListDocuments)
		r.Head("/", h.ListDocuments)
		r.Post("/", h.CreateDocument)
		r.Get("/shared", h.ListSharedDocuments)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Head("/", h.GetDocument)
			r.Patch("/", h.UpdateDocument)
			r.Delete("/", h.DeleteDocument)
			r.Get("/versions", h.ListVersions)
			r.Post("/versions", h.UploadVersion)
			r.Get("/download", h.Download)
			setupShareRoutes(r, shares)
		})
	})

	r.Route("/public/docs", func(r chi.Router) {
		r.Get("/{id}", h.GetPublicDocument)
		r.Head("/{id}", h.GetPublicDocument)
		r.Get("/{id}/download", h.DownloadPublic)
	})
}

func setupFolderRoutes(r chi.Router, h *handler.FolderHandler, shares *handler.ShareHandler, auth middleware) {
	r.Route("/api/folders", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListFolders)
		r.Post("/", h.CreateFolder)
		r.Get("/shared", h.ListSharedFolders)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetFolder)
			r.Patch("/", h.UpdateFolder)
			r.Delete("/", h.DeleteFolder)
			setupShareRoutes(r, shares)
		})
	})
}

func setupAccessRoutes(r chi.Router, sharingService ports.SharingService, auth middleware) {
	r.With(auth).Get("/api/access/{resource_type}/{id}", handler.CheckAccess(sharingService))
}

func setupIntegrationRoutes(r chi.Router, h *handler.IntegrationHandler, auth middleware) {
	r.Route("/api/integrations/google", func(r chi.Router) {
		r.Get("/callback", h.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/auth-url", h.AuthorizationURL)
			r.Get("/status", h.Status)
			r.Delete("/", h.Disconnect)
			r.Get("/files", h.ListFiles)
			r.Get("/files/{file_id}", h.GetFile)
			r.Get("/search", h.SearchFiles)
			r.Get("/quota", h.StorageQuota)
			r.Post("/import", h.Import)
		})
	})
}
