package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fitsync/config"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/service"
	"fitsync/internal/infra/auth"
	"fitsync/internal/infra/auth/browser"
	logs "fitsync/internal/infra/log"
	"fitsync/internal/infra/platform"
	"fitsync/internal/infra/storage"
	"fitsync/internal/usecase"
	"fitsync/internal/usecase/impl"
	"fitsync/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Supported subcommands:
// - login:    Authenticate and persist the session
// - status:   Show the cached session state
// - workouts: List workouts, or show one with -id
// - logout:   Clear the persisted session

func main() {
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	workoutsCmd := flag.NewFlagSet("workouts", flag.ExitOnError)
	logoutCmd := flag.NewFlagSet("logout", flag.ExitOnError)

	// login parameters
	loginUsername := loginCmd.String("username", "", "Platform account username")
	loginPassword := loginCmd.String("password", "", "Platform account password (prompted when omitted)")

	// workouts parameters
	workoutID := workoutsCmd.String("id", "", "Show a single workout by id")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags := fitsyncFlags{
		Login: loginFlags{
			cmd:      loginCmd,
			username: loginUsername,
			password: loginPassword,
		},
		Status:   statusFlags{cmd: statusCmd},
		Workouts: workoutsFlags{cmd: workoutsCmd, id: workoutID},
		Logout:   logoutFlags{cmd: logoutCmd},
	}

	if err := run(ctx, &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type fitsyncFlags struct {
	Login    loginFlags
	Status   statusFlags
	Workouts workoutsFlags
	Logout   logoutFlags
}

type loginFlags struct {
	cmd      *flag.FlagSet
	username *string
	password *string
}

type statusFlags struct {
	cmd *flag.FlagSet
}

type workoutsFlags struct {
	cmd *flag.FlagSet
	id  *string
}

type logoutFlags struct {
	cmd *flag.FlagSet
}

// run builds the dependency graph and dispatches the subcommand against it.
func run(ctx context.Context, flags *fitsyncFlags) error {
	var (
		authUsecase    usecase.AuthUsecase
		workoutUsecase usecase.WorkoutUsecase
	)

	app := fx.New(
		fx.NopLogger,
		injectInfra(),
		injectStrategy(),
		injectUsecase(),
		fx.Populate(&authUsecase, &workoutUsecase),
	)

	startCtx, startCancel := context.WithTimeout(ctx, 15*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		return errors.Wrap(err, "failed to initialize")
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	return runSubcommand(ctx, flags, authUsecase, workoutUsecase)
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		storage.NewFileStore,
	)
}

func injectStrategy() fx.Option {
	return fx.Provide(
		newStrategies,
	)
}

// newStrategies registers browser automation ahead of the direct API: the
// session service tries strategies in slice order.
func newStrategies(cfg *config.Config, logger *slog.Logger) []service.AuthStrategy {
	return []service.AuthStrategy{
		browser.NewWebStrategy(cfg, logger),
		auth.NewAPIStrategy(cfg, logger),
	}
}

func injectUsecase() fx.Option {
	return fx.Provide(
		impl.NewAuthSessionService,
		platform.NewWorkoutClient,
		impl.NewWorkoutService,
	)
}

func runSubcommand(
	ctx context.Context,
	flags *fitsyncFlags,
	authUsecase usecase.AuthUsecase,
	workoutUsecase usecase.WorkoutUsecase,
) error {
	switch os.Args[1] {
	case "login":
		return handleLogin(ctx, flags, authUsecase)
	case "status":
		return handleStatus(flags, authUsecase)
	case "workouts":
		return handleWorkouts(ctx, flags, workoutUsecase)
	case "logout":
		return handleLogout(ctx, flags, authUsecase)
	default:
		printUsage()

		return errors.New("unknown subcommand")
	}
}

func handleLogin(ctx context.Context, flags *fitsyncFlags, authUsecase usecase.AuthUsecase) error {
	if err := flags.Login.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse login flags")
	}

	if *flags.Login.username == "" {
		return errors.New("--username flag is required for login command")
	}

	password := *flags.Login.password
	if password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return errors.Wrap(err, "failed to read password")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	creds, err := entity.NewCredentials(*flags.Login.username, password)
	if err != nil {
		return err
	}

	session, err := authUsecase.Authenticate(ctx, creds)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", session.User.Name, session.User.ID)
	fmt.Printf("Token valid for %s\n", util.FormatDuration(time.Until(session.Token.ExpiresAt)))

	return nil
}

func handleStatus(flags *fitsyncFlags, authUsecase usecase.AuthUsecase) error {
	if err := flags.Status.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse status flags")
	}

	token := authUsecase.CurrentToken()
	if token == nil {
		fmt.Println("Not logged in")

		return nil
	}

	fmt.Printf("Logged in, user %s\n", authUsecase.UserID())
	fmt.Printf("Token valid for %s\n", util.FormatDuration(time.Until(token.ExpiresAt)))
	if token.HasRefreshCapability() {
		fmt.Println("Refresh: supported")
	} else {
		fmt.Println("Refresh: not supported (re-login required on expiry)")
	}

	return nil
}

func handleWorkouts(ctx context.Context, flags *fitsyncFlags, workoutUsecase usecase.WorkoutUsecase) error {
	if err := flags.Workouts.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse workouts flags")
	}

	if *flags.Workouts.id != "" {
		workout, err := workoutUsecase.GetWorkout(ctx, *flags.Workouts.id)
		if err != nil {
			return err
		}
		printWorkout(workout)

		return nil
	}

	workouts, err := workoutUsecase.ListWorkouts(ctx)
	if err != nil {
		return err
	}

	if len(workouts) == 0 {
		fmt.Println("No workouts")

		return nil
	}
	for _, workout := range workouts {
		printWorkout(workout)
	}

	return nil
}

func printWorkout(workout *entity.Workout) {
	fmt.Printf("%s  %-10s %-30s %8s  %s\n",
		workout.StartTime.Format("2006-01-02 15:04"),
		workout.Sport,
		workout.Name,
		util.FormatDistance(workout.DistanceMeters),
		util.FormatDuration(workout.Duration),
	)
}

func handleLogout(ctx context.Context, flags *fitsyncFlags, authUsecase usecase.AuthUsecase) error {
	if err := flags.Logout.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrap(err, "failed to parse logout flags")
	}

	if err := authUsecase.ClearAuth(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out")

	return nil
}

func printUsage() {
	fmt.Println("Usage: fitsync <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  login       Authenticate and persist the session")
	fmt.Println("  status      Show the cached session state")
	fmt.Println("  workouts    List workouts, or show one with -id")
	fmt.Println("  logout      Clear the persisted session")
	fmt.Println("")
	fmt.Println("Use 'fitsync <command> -h' for more information about a command.")
}
