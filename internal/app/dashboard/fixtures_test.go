package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/alunos/internal/app/auth"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/repositories"
	pkgauth "github.com/yigit/alunos/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// stubGateway wraps the memory repository with injectable failures and an
// optional gate that holds calls until released.
type stubGateway struct {
	*repositories.MemoryStudentRepository

	mu        sync.Mutex
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	gate      chan struct{}
	entered   chan struct{}
	calls     map[string]int
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		MemoryStudentRepository: repositories.NewMemoryStudentRepository(),
		calls:                   make(map[string]int),
	}
}

func (g *stubGateway) hold() {
	g.mu.Lock()
	g.gate = make(chan struct{})
	g.entered = make(chan struct{}, 1)
	g.mu.Unlock()
}

func (g *stubGateway) release() {
	g.mu.Lock()
	gate := g.gate
	g.gate = nil
	g.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (g *stubGateway) enter(op string) error {
	g.mu.Lock()
	g.calls[op]++
	gate, entered := g.gate, g.entered
	var err error
	switch op {
	case "list":
		err = g.listErr
	case "create":
		err = g.createErr
	case "update":
		err = g.updateErr
	case "delete":
		err = g.deleteErr
	}
	g.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	return err
}

func (g *stubGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *stubGateway) fail(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch op {
	case "list":
		g.listErr = err
	case "create":
		g.createErr = err
	case "update":
		g.updateErr = err
	case "delete":
		g.deleteErr = err
	}
}

func (g *stubGateway) List(ctx context.Context, ownerID uuid.UUID) ([]models.Student, error) {
	if err := g.enter("list"); err != nil {
		return nil, err
	}
	return g.MemoryStudentRepository.List(ctx, ownerID)
}

func (g *stubGateway) Create(ctx context.Context, ownerID uuid.UUID, in models.StudentInput) (*models.Student, error) {
	if err := g.enter("create"); err != nil {
		return nil, err
	}
	return g.MemoryStudentRepository.Create(ctx, ownerID, in)
}

func (g *stubGateway) Update(ctx context.Context, ownerID, id uuid.UUID, in models.StudentInput) error {
	if err := g.enter("update"); err != nil {
		return err
	}
	return g.MemoryStudentRepository.Update(ctx, ownerID, id, in)
}

func (g *stubGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := g.enter("delete"); err != nil {
		return err
	}
	return g.MemoryStudentRepository.Delete(ctx, ownerID, id)
}

func validInput(name, reg, cpf string) models.StudentInput {
	return models.StudentInput{
		FullName:           name,
		RegistrationNumber: reg,
		CPF:                cpf,
		BirthDate:          "2004-08-21",
		Email:              "ana@example.com",
		Phone:              "11987654321",
	}
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ string, path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *recordingNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.paths...)
}

func newTestProvider(t *testing.T) (*auth.SessionProvider, *models.Session) {
	t.Helper()
	provider := auth.NewSessionProvider(
		repositories.NewMemoryAccountStore(),
		repositories.NewMemorySessionStore(),
		pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "alunos-test"}),
		pkgauth.NewPasswordHasher(bcrypt.MinCost),
		zerolog.Nop(),
	)
	ctx := context.Background()
	_, err := provider.SignUp(ctx, "professor@escola.com", "segredo123")
	require.NoError(t, err)
	session, _, err := provider.SignIn(ctx, "professor@escola.com", "segredo123")
	require.NoError(t, err)
	return provider, session
}
