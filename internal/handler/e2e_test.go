package handler_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/handler"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/testdb"
	"github.com/BuzzLyutic/task-tracker/internal/view"
	"github.com/BuzzLyutic/task-tracker/pkg/client"
)

const testSecret = "e2e-secret"

type e2eEnv struct {
	url   string
	api   *client.Client
	users repo.UserDirectory
}

func setupE2E(t *testing.T, name string, tasks repo.TaskRepository, users repo.UserDirectory) e2eEnv {
	t.Helper()

	issuer := auth.NewIssuer(testSecret, time.Hour)
	svc := service.NewTaskService(tasks, users, 0)
	server := httptest.NewServer(handler.NewRouter(svc, zap.NewNop(), issuer.Middleware))
	t.Cleanup(server.Close)

	token, err := issuer.Issue(auth.Session{UserID: uuid.New(), Email: name + "@example.com"})
	require.NoError(t, err)

	return e2eEnv{url: server.URL, api: client.New(server.URL, client.WithToken(token)), users: users}
}

func TestE2E(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		runE2E(t, func(t *testing.T) e2eEnv {
			db := testdb.SetupSQLite(t)
			return setupE2E(t, "sqlite", repo.NewGormTaskRepo(db), repo.NewGormUserRepo(db))
		})
	})

	t.Run("postgres", func(t *testing.T) {
		pool, cleanup := testdb.SetupPostgres(t)
		defer cleanup()

		runE2E(t, func(t *testing.T) e2eEnv {
			testdb.TruncateTables(t, pool)
			return setupE2E(t, "postgres", repo.NewTaskRepo(pool), repo.NewUserRepo(pool))
		})
	})
}

func runE2E(t *testing.T, setup func(*testing.T) e2eEnv) {
	ctx := context.Background()

	t.Run("complete workflow", func(t *testing.T) {
		env := setup(t)

		// 1. Create
		created, err := env.api.CreateTask(ctx, model.TaskInput{Title: "Write report", Priority: "high"})
		require.NoError(t, err)
		assert.False(t, created.Completed)
		require.NotNil(t, created.Priority)
		assert.Equal(t, model.PriorityHigh, *created.Priority)

		// 2. List
		tasks, err := env.api.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Write report", tasks[0].Title)

		// 3. Toggle from the shown value
		toggled, err := env.api.ToggleTask(ctx, created.ID, false)
		require.NoError(t, err)
		assert.True(t, toggled.Completed)

		got, err := env.api.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)

		// 4. Update
		updated, err := env.api.UpdateTask(ctx, created.ID, model.TaskPatch{
			Description: model.Value("Q3 numbers"),
			Priority:    model.Null[string](),
		})
		require.NoError(t, err)
		assert.Equal(t, "Write report", updated.Title)
		assert.Equal(t, "Q3 numbers", *updated.Description)
		assert.Nil(t, updated.Priority)
		assert.True(t, updated.Completed)

		// 5. Delete
		require.NoError(t, env.api.DeleteTask(ctx, created.ID))

		tasks, err = env.api.ListTasks(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		err = env.api.DeleteTask(ctx, created.ID)
		assert.True(t, client.IsNotFound(err))
	})

	t.Run("validation errors surface as 400", func(t *testing.T) {
		env := setup(t)

		_, err := env.api.CreateTask(ctx, model.TaskInput{Title: "   "})

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.Status)

		tasks, err := env.api.ListTasks(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("retried create with the same key", func(t *testing.T) {
		env := setup(t)

		first, err := env.api.CreateTaskWithKey(ctx, "create-write-report", model.TaskInput{Title: "Write report"})
		require.NoError(t, err)
		second, err := env.api.CreateTaskWithKey(ctx, "create-write-report", model.TaskInput{Title: "Write report"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		_, err = env.api.CreateTask(ctx, model.TaskInput{Title: "Write report"})
		require.NoError(t, err)

		tasks, err := env.api.ListTasks(ctx)
		require.NoError(t, err)
		assert.Len(t, tasks, 2, "keyless create is never deduplicated")
	})

	t.Run("board groups by assignee", func(t *testing.T) {
		env := setup(t)
		seeded := testdb.SeedUsers(t, env.users, "Bob Stone", "Alice Smith")
		bob, alice := seeded[0], seeded[1]

		for _, in := range []model.TaskInput{
			{Title: "Alice task", AssignedUser: alice.ID.String()},
			{Title: "Bob task", AssignedUser: bob.ID.String()},
			{Title: "Nobody's task", AssignedUser: ""},
		} {
			_, err := env.api.CreateTask(ctx, in)
			require.NoError(t, err)
		}

		board := view.NewBoard(env.api, zap.NewNop())
		require.NoError(t, board.Refresh(ctx))

		groups := board.Groups()
		require.Len(t, groups, 3)

		assert.Equal(t, "Alice Smith", groups[0].User.Name)
		require.Len(t, groups[0].Tasks, 1)
		assert.Equal(t, "Alice task", groups[0].Tasks[0].Title)

		assert.Equal(t, "Bob Stone", groups[1].User.Name)
		require.Len(t, groups[1].Tasks, 1)
		assert.Equal(t, "Bob task", groups[1].Tasks[0].Title)

		assert.Nil(t, groups[2].User)
		require.Len(t, groups[2].Tasks, 1)
		assert.Equal(t, "Nobody's task", groups[2].Tasks[0].Title)
		assert.Nil(t, groups[2].Tasks[0].AssignedUser)

		unassigned := board.Visible(view.Filter{Assignee: view.Unassigned})
		require.Len(t, unassigned, 1)
		assert.Equal(t, "Nobody's task", unassigned[0].Title)
	})

	t.Run("board toggle and delete refetch", func(t *testing.T) {
		env := setup(t)
		board := view.NewBoard(env.api, zap.NewNop())

		f := view.NewForm(view.CreateMode{})
		f.Title = "From the form"
		f.DueDate = "2026-11-01"
		created, err := board.Save(ctx, f)
		require.NoError(t, err)
		require.Len(t, board.Tasks(), 1)
		assert.Equal(t, model.PriorityMedium, *board.Tasks()[0].Priority)

		require.NoError(t, board.Toggle(ctx, board.Tasks()[0]))
		assert.Equal(t, view.Stats{Total: 1, Completed: 1}, board.Stats())

		edit := view.NewForm(view.EditMode{Task: board.Tasks()[0]})
		assert.Equal(t, "2026-11-01", edit.DueDate)
		edit.DueDate = ""
		_, err = board.Save(ctx, edit)
		require.NoError(t, err)
		assert.Nil(t, board.Tasks()[0].DueDate)

		require.NoError(t, board.Delete(ctx, created.ID))
		assert.Empty(t, board.Tasks())
	})

	t.Run("concurrent flips through the API", func(t *testing.T) {
		env := setup(t)
		created, err := env.api.CreateTask(ctx, model.TaskInput{Title: "Contended"})
		require.NoError(t, err)

		const n = 6
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.api.FlipTask(ctx, created.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := env.api.GetTask(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, got.Completed, "even number of flips")
	})

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		env := setup(t)

		anon := client.New(env.url)
		_, err := anon.ListTasks(ctx)

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 401, apiErr.Status)
	})
}
