package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/service/common"
	"github.com/oshokin/bell-scheduler/internal/service/intake"
	"github.com/oshokin/bell-scheduler/internal/service/normalizer"
)

// TestIntake_SubmitThenNormalize submits through the real intake server and
// folds the resulting log with a single normalizer pass.
func TestIntake_SubmitThenNormalize(t *testing.T) {
	t.Parallel()

	var (
		dataDir = t.TempDir()
		addr    = reservePort(t)
		cfgPath = writeConfig(t, &config.Config{
			DataDir:        dataDir,
			IntakeAddress:  addr,
			ConsoleAddress: reservePort(t),
		})
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)

	go func() {
		served <- intake.Run(ctx, &intake.Options{ConfigPath: cfgPath})
	}()

	c, err := common.Dial(ctx, addr,
		common.WithCallTimeout(3*time.Second),
		common.WithActor(&bell.Actor{Hostname: "test-hostname", Username: "test-user"}),
	)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	submissions := []map[string]any{
		{"mode": "1", "slot": "2", "date": "20/03/2024", "start_time": "10:00:00"},
		{"mode": "0", "date": "20/03/2024"},
		{"mode": "2", "slot": "1", "dates": []any{"21/03/24", "22/03/24"}, "start_time": "09:00:00"},
		{"mode": "3", "start_time": "11:00:00"},
	}

	// The server may still be binding; retry the first submission briefly.
	require.Eventually(t, func() bool {
		_, submitErr := c.Submit(ctx, submissions[0])
		return submitErr == nil
	}, 3*time.Second, 50*time.Millisecond)

	for _, fields := range submissions[1:] {
		_, err = c.Submit(ctx, fields)
		require.NoError(t, err)
	}

	_, err = c.Submit(ctx, map[string]any{"mode": "1", "slot": "9", "date": "20/03/2024", "start_time": "10:00:00"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	intakeLog, err := os.ReadFile(filepath.Join(dataDir, config.DefaultIntakeFilename))
	require.NoError(t, err)
	require.Equal(t,
		"1,2,20-03-2024,10:00:00\n"+
			"0,20-03-2024\n"+
			"2,1,21-03-2024,09:00:00\n"+
			"2,1,22-03-2024,09:00:00\n"+
			"3,11:00:00\n",
		string(intakeLog),
	)

	require.NoError(t, normalizer.Run(context.Background(), &normalizer.Options{ConfigPath: cfgPath, Once: true}))

	snapshot, err := os.ReadFile(filepath.Join(dataDir, config.DefaultSnapshotFilename))
	require.NoError(t, err)
	require.Equal(t, "0,20-03-2024\n2,1,21-03-2024,09:00:00\n2,1,22-03-2024,09:00:00\n", string(snapshot))

	flag, err := os.ReadFile(filepath.Join(dataDir, config.DefaultImmediateFilename))
	require.NoError(t, err)
	require.Equal(t, "11:00:00\n", string(flag))

	// The immediate ring was consumed from the log.
	intakeLog, err = os.ReadFile(filepath.Join(dataDir, config.DefaultIntakeFilename))
	require.NoError(t, err)
	require.NotContains(t, string(intakeLog), "3,11:00:00")

	for _, report := range []string{config.DefaultReportCSVFilename, config.DefaultReportICSFilename} {
		_, err = os.Stat(filepath.Join(dataDir, report))
		require.NoError(t, err)
	}

	cancel()
	require.NoError(t, <-served)
}
