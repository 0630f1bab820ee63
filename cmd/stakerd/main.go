// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/plumestake/stakerd/api"
	"github.com/plumestake/stakerd/api/admin/health"
	"github.com/plumestake/stakerd/eventdb"
	"github.com/plumestake/stakerd/executor"
	"github.com/plumestake/stakerd/log"
	"github.com/plumestake/stakerd/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("stakerd/%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	envFile := os.Getenv("STAKERD_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		fatal(err)
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakerd",
		Usage:     "Validator staking and reward engine",
		Copyright: "2025 Plume Staking developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			stateCacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			apiPageLimitFlag,
			enableAPILogsFlag,
			pprofFlag,
			blockIntervalFlag,
			maxBlockCommandsFlag,
			ntpServerFlag,
			skipEventsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "verify",
				Usage: "replay the sealed chain and check receipts and the event database",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					cacheFlag,
					verbosityFlag,
					jsonLogsFlag,
					rebuildEventsFlag,
				},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitCtx, cancel := handleExitSignal()
	defer cancel()

	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	// must precede the first use of any meter
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gen, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var instanceDir string
	if ctx.BoolT(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gen); err != nil {
			return err
		}
	}

	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	var eventDB *eventdb.EventDB
	if !ctx.Bool(skipEventsFlag.Name) {
		if eventDB, err = openEventDB(instanceDir); err != nil {
			return err
		}
		defer func() { log.Info("closing event database..."); eventDB.Close() }()
	}

	exec := executor.New(mainDB, eventDB, executorOptions(ctx))
	best, err := exec.Initialize(gen)
	if err != nil {
		return err
	}

	var metricsURL string
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	healthStatus := health.New(exec)
	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, healthStatus)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	apiHandler, apiClose := api.New(exec, eventDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		BacktraceLimit:  ctx.Uint64(apiBacktraceLimitFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		PageLimit:       ctx.Int(apiPageLimitFlag.Name),
		CommandTimeout:  time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond,
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer func() { log.Info("closing API..."); apiClose() }()

	// commands wait for their block, so the server timeout leaves them a second of margin
	serverTimeout := time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond + time.Second
	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler, serverTimeout)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(gen, best, instanceDir, apiURL, metricsURL, adminURL)

	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		return exec.Run(groupCtx)
	})
	group.Go(func() error {
		healthStatus.Run(groupCtx.Done())
		return nil
	})
	healthStatus.Ready(true)

	err = group.Wait()
	healthStatus.Ready(false)
	return err
}
