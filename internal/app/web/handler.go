package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/alunos/internal/app/dashboard"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/models/dto"
	"github.com/yigit/alunos/internal/app/services"
	"github.com/yigit/alunos/internal/middleware"
	"github.com/yigit/alunos/internal/pkg/apperrors"
)

// Paths of the browser UI
const (
	LandingPath   = "/"
	AuthPath      = dashboard.UnauthenticatedPath
	DashboardPath = "/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler serves the browser UI
type Handler struct {
	authService  services.AuthService
	registry     *dashboard.Registry
	events       gin.HandlerFunc
	cookieSecure bool
	logger       zerolog.Logger
}

// NewHandler creates a new web Handler. events serves the dashboard websocket
// and may be nil.
func NewHandler(authService services.AuthService, registry *dashboard.Registry, events gin.HandlerFunc, cookieSecure bool, logger zerolog.Logger) *Handler {
	return &Handler{
		authService:  authService,
		registry:     registry,
		events:       events,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// Register installs templates, static assets and page routes on the router
func (h *Handler) Register(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(assets))

	router.GET(LandingPath, h.Landing)
	router.GET(AuthPath, h.AuthPage)
	router.POST(AuthPath+"/login", h.Login)
	router.POST(AuthPath+"/signup", h.SignUp)

	board := router.Group(DashboardPath)
	board.Use(authMiddleware.SessionCookieAuth(AuthPath, h.cookieSecure))
	{
		board.GET("", h.Dashboard)
		board.GET("/list", h.ListFragment)
		board.POST("/refresh", h.Refresh)
		board.POST("/new", h.OpenCreate)
		board.POST("/students/:id/edit", h.Edit)
		board.POST("/students/:id/delete", h.RequestDelete)
		board.POST("/delete/confirm", h.ConfirmDelete)
		board.POST("/delete/cancel", h.CancelDelete)
		board.POST("/form", h.SubmitForm)
		board.POST("/form/cancel", h.CancelForm)
		board.POST("/logout", h.Logout)
		if h.events != nil {
			board.GET("/events", h.events)
		}
	}
	return nil
}

type credentialsForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// Landing renders the public landing page
func (h *Handler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", landingPage{Toast: newToastView(h.takeFlash(c))})
}

// AuthPage renders the sign-in and sign-up forms
func (h *Handler) AuthPage(c *gin.Context) {
	if h.registry != nil {
		h.registry.Sweep()
	}
	c.HTML(http.StatusOK, "auth.html", authPage{
		Signup: c.Query("mode") == "signup",
		Email:  c.Query("email"),
		Toast:  newToastView(h.takeFlash(c)),
	})
}

// Login signs in and stores the access token in the session cookie
func (h *Handler) Login(c *gin.Context) {
	var form credentialsForm
	_ = c.ShouldBind(&form)

	if h.signIn(c, form) {
		c.Redirect(http.StatusSeeOther, DashboardPath)
		return
	}
	c.Redirect(http.StatusSeeOther, AuthPath)
}

// SignUp creates an account, then signs in with it
func (h *Handler) SignUp(c *gin.Context) {
	var form credentialsForm
	_ = c.ShouldBind(&form)

	_, err := h.authService.SignUp(c.Request.Context(), &dto.SignUpRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		h.setFlash(c, dashboard.Notification{
			Title:       "Erro ao cadastrar",
			Description: signUpErrorMessage(err),
			Variant:     dashboard.VariantDestructive,
		})
		c.Redirect(http.StatusSeeOther, AuthPath+"?mode=signup")
		return
	}

	if h.signIn(c, form) {
		h.setFlash(c, dashboard.Notification{Title: "Conta criada!", Description: "Bem-vindo ao sistema."})
		c.Redirect(http.StatusSeeOther, DashboardPath)
		return
	}
	c.Redirect(http.StatusSeeOther, AuthPath)
}

func (h *Handler) signIn(c *gin.Context, form credentialsForm) bool {
	token, err := h.authService.Login(c.Request.Context(), &dto.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		description := "Não foi possível entrar. Tente novamente."
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			description = "Email ou senha incorretos."
		} else {
			h.logger.Error().Err(err).Msg("Browser sign-in failed")
		}
		h.setFlash(c, dashboard.Notification{Title: "Erro ao entrar", Description: description, Variant: dashboard.VariantDestructive})
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token.AccessToken, int(token.ExpiresIn), "/", "", h.cookieSecure, true)
	return true
}

func signUpErrorMessage(err error) string {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return "Este email já está cadastrado."
	default:
		return "Não foi possível criar a conta. Tente novamente."
	}
}

// current returns the dashboard of the request's session
func (h *Handler) current(c *gin.Context) (*dashboard.Dashboard, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, AuthPath)
		c.Abort()
		return nil, false
	}
	return h.registry.Get(*session), true
}

// back redirects to the dashboard, or away from it once the dashboard has left
func (h *Handler) back(c *gin.Context, d *dashboard.Dashboard) {
	if d.Left() {
		h.leave(c, d)
		return
	}
	c.Redirect(http.StatusSeeOther, DashboardPath)
}

func (h *Handler) leave(c *gin.Context, d *dashboard.Dashboard) {
	if n, ok := d.Toaster().Take(); ok {
		h.setFlash(c, n)
	}
	h.registry.Remove(d.Session().ID)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusSeeOther, d.Destination())
}

// Dashboard renders the list or the form, whichever is active
func (h *Handler) Dashboard(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	if d.Left() {
		h.leave(c, d)
		return
	}

	if err := d.Mount(c.Request.Context()); err != nil {
		h.logger.Debug().Err(err).Msg("Dashboard mount reported an error")
	}
	if q, searching := c.GetQuery("q"); searching {
		if list := d.List(); list != nil {
			list.SetSearch(q)
		}
	}

	var toast *dashboard.Notification
	if n, ok := d.Toaster().Take(); ok {
		toast = &n
	} else {
		toast = h.takeFlash(c)
	}
	c.HTML(http.StatusOK, "dashboard.html", newDashboardPage(d, toast))
}

// ListFragment renders only the student list, filtered by q
func (h *Handler) ListFragment(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	list := d.List()
	if list == nil {
		c.Status(http.StatusNoContent)
		return
	}
	_ = list.Mount(c.Request.Context())
	list.SetSearch(c.Query("q"))
	c.HTML(http.StatusOK, "student_list", newListView(list))
}

// Refresh reloads the list from the store
func (h *Handler) Refresh(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	_ = d.Refresh(c.Request.Context())
	h.back(c, d)
}

// OpenCreate switches the dashboard to an empty form
func (h *Handler) OpenCreate(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	d.OpenCreate()
	h.back(c, d)
}

// Edit switches the dashboard to a form pre-filled with a student
func (h *Handler) Edit(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err == nil {
		err = d.Edit(id)
	}
	if err != nil {
		d.Toaster().Notify(dashboard.Notification{
			Title:       "Aluno não encontrado",
			Description: "Atualize a lista e tente novamente.",
			Variant:     dashboard.VariantDestructive,
		})
	}
	h.back(c, d)
}

// SubmitForm saves the open form
func (h *Handler) SubmitForm(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	var in models.StudentInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.Debug().Err(err).Msg("Student form could not be bound")
	}

	err := d.SubmitForm(c.Request.Context(), in)
	switch {
	case errors.Is(err, dashboard.ErrSubmitInProgress):
		d.Toaster().Notify(dashboard.Notification{Title: "Aguarde", Description: "O aluno ainda está sendo salvo."})
	case errors.Is(err, dashboard.ErrFormClosed):
		h.logger.Debug().Msg("Submit for a form that is no longer open")
	}
	h.back(c, d)
}

// CancelForm closes the form without saving
func (h *Handler) CancelForm(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	_ = d.CloseForm()
	h.back(c, d)
}

// RequestDelete opens the delete confirmation for a student
func (h *Handler) RequestDelete(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	if list := d.List(); list != nil {
		if id, err := uuid.Parse(c.Param("id")); err == nil {
			_, _ = list.RequestDelete(id)
		}
	}
	h.back(c, d)
}

// ConfirmDelete deletes the student awaiting confirmation
func (h *Handler) ConfirmDelete(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	if list := d.List(); list != nil {
		if err := list.ConfirmDelete(c.Request.Context()); err != nil && !errors.Is(err, dashboard.ErrNoPendingDelete) {
			h.logger.Debug().Err(err).Msg("Delete from dashboard failed")
		}
	}
	h.back(c, d)
}

// CancelDelete dismisses the delete confirmation
func (h *Handler) CancelDelete(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	if list := d.List(); list != nil {
		list.CancelDelete()
	}
	h.back(c, d)
}

// Logout ends the session and leaves the dashboard
func (h *Handler) Logout(c *gin.Context) {
	d, ok := h.current(c)
	if !ok {
		return
	}
	_ = d.Logout(c.Request.Context())
	h.back(c, d)
}
