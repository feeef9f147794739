package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appAuth "github.com/yigit/alunos/internal/app/auth"
	appRepos "github.com/yigit/alunos/internal/app/repositories"
	pkgAuth "github.com/yigit/alunos/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := appRepos.NewMemoryRepositories()
	provider := appAuth.NewSessionProvider(
		repos.AccountStore,
		repos.SessionStore,
		pkgAuth.NewJWTService(pkgAuth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "alunos-test"}),
		pkgAuth.NewPasswordHasher(bcrypt.MinCost),
		zerolog.Nop(),
	)
	demo := DemoAccount{Email: "professor@escola.com", Password: "segredo123"}

	require.NoError(t, CreateDefaultData(ctx, provider, repos.StudentGateway, demo, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, provider, repos.StudentGateway, demo, zerolog.Nop()))

	account, err := repos.AccountStore.GetAccountByEmail(ctx, demo.Email)
	require.NoError(t, err)
	students, err := repos.StudentGateway.List(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, students, len(demoStudents))

	_, _, err = provider.SignIn(ctx, demo.Email, demo.Password)
	assert.NoError(t, err)
}

func TestCreateDefaultDataDisabled(t *testing.T) {
	assert.NoError(t, CreateDefaultData(context.Background(), nil, nil, DemoAccount{}, zerolog.Nop()))
}
