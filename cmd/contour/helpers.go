package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/contourai-mcp-server/internal/config"
	"github.com/contourai-mcp-server/internal/domain"
	"github.com/contourai-mcp-server/internal/logging"
	"github.com/contourai-mcp-server/internal/service"
)

// app holds what every subcommand needs
type app struct {
	config   *config.Manager
	logger   *logrus.Logger
	service  *service.ContourService
	closeLog func() error
}

func newApp(flags *rootFlags) (*app, error) {
	cm, err := config.NewManager(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cm.GetLoggingConfig().Level = flags.logLevel
	}
	if err := cm.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := logging.New(*cm.GetLoggingConfig())
	if err != nil {
		return nil, err
	}

	svc, err := service.NewContourService(logger, nil, *cm.GetEngineConfig())
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &app{config: cm, logger: logger, service: svc, closeLog: closeLog}, nil
}

// close releases the log file, if any.
func (a *app) close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log output: %v\n", err)
	}
}

// reportDir returns outDir, falling back to export.dir when save is set.
// Empty means stdout.
func (a *app) reportDir(outDir string, save bool) string {
	if outDir != "" {
		return outDir
	}
	if save {
		return a.config.GetExportConfig().Dir
	}
	return ""
}

// caseFlags are the case attributes accepted on the command line.
type caseFlags struct {
	site              string
	subsite           string
	oropharynxSubsite string
	tStage            string
	nStage            string
	ene               string
	hpv               string
	tumorLaterality   string
	marginMm          string
	marginStatus      string
	doi               string
	pni               string
	lvi               string
}

func (f caseFlags) caseData() domain.CaseData {
	return domain.CaseData{
		Site:              domain.Site(f.site),
		Subsite:           domain.Subsite(f.subsite),
		OropharynxSubsite: domain.OropharynxSubsite(f.oropharynxSubsite),
		TStage:            f.tStage,
		NStage:            f.nStage,
		ENEStatus:         domain.ENEStatus(f.ene),
		HPVStatus:         domain.HPVStatus(f.hpv),
		TumorLaterality:   domain.TumorLaterality(f.tumorLaterality),
		MarginMm:          domain.ParseMeasurement(f.marginMm),
		MarginStatus:      domain.MarginStatus(f.marginStatus),
		DOI:               domain.ParseMeasurement(f.doi),
		PNI:               domain.YesNo(f.pni),
		LVI:               domain.YesNo(f.lvi),
	}
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
