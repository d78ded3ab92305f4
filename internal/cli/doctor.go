// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Doctor command implementation for rigchat.
//
// Command: doctor
// Aliases: diag
//
// Examples:
//   rigchat doctor               Run all health checks
//   rigchat doctor --json        Health check results in JSON
//
// Health Checks Performed:
//   1. Ollama Installed    - Checks if the Ollama CLI is available
//   2. Gateway Reachable   - Checks if the gateway responds, with latency
//   3. Model Available     - Checks if the configured model is downloaded
//   4. Config Valid        - Validates the configuration file
//   5. Upload Dir Writable - Checks upload directory permissions
//
// Exit Codes:
//   0   All checks passed
//   1   One or more checks failed

package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/gateway"
)

// fixStyle renders fix suggestions under failed checks.
var fixStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("245")).
	Italic(true).
	PaddingLeft(2)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the rendered status tag for terminal display.
func (s CheckStatus) Symbol() string {
	return RenderStatus(s.String())
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), ValueStyle.Render(c.Message))
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles the "doctor" command.
func HandleDoctor(args Args) {
	if err := HandleDoctorCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleDoctorCommand runs all health checks and reports the results.
func HandleDoctorCommand(args Args) error {
	checks := runAllChecks(args)

	passed := 0
	warned := 0
	failed := 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	if args.JSON {
		return handleDoctorJSON(checks, passed, warned, failed)
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("rigchat Doctor"))
	fmt.Println(RenderSeparator(41))
	fmt.Println()

	for _, check := range checks {
		fmt.Println(check.Render())
	}

	fmt.Println()
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 41)))

	summaryParts := []string{
		fmt.Sprintf("%d passed", passed),
	}
	if warned > 0 {
		summaryParts = append(summaryParts, WarningStyle.Render(fmt.Sprintf("%d warning", warned)))
	}
	if failed > 0 {
		summaryParts = append(summaryParts, ErrorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}

	fmt.Println(DimStyle.Render(strings.Join(summaryParts, ", ")))
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d health check(s) failed", failed)
	}

	return nil
}

// handleDoctorJSON outputs doctor results in JSON format.
func handleDoctorJSON(checks []*HealthCheck, passed, warned, failed int) error {
	jsonChecks := make([]DoctorCheck, 0, len(checks))
	for _, check := range checks {
		status := "pass"
		switch check.Status {
		case CheckWarn:
			status = "warn"
		case CheckFail:
			status = "fail"
		}

		jsonChecks = append(jsonChecks, DoctorCheck{
			Name:    check.Name,
			Status:  status,
			Message: check.Message,
			Fix:     check.Fix,
		})
	}

	data := DoctorData{
		Checks: jsonChecks,
		Summary: DoctorSummary{
			Passed:  passed,
			Warned:  warned,
			Failed:  failed,
			Healthy: failed == 0,
		},
	}

	resp := NewJSONResponse("doctor", data)

	// Failures flip the success flag but still carry the full check data
	if failed > 0 {
		errMsg := fmt.Sprintf("%d health check(s) failed", failed)
		resp.Success = false
		resp.Error = &errMsg
	}

	return resp.Print()
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// runAllChecks runs all health checks and returns the results.
func runAllChecks(args Args) []*HealthCheck {
	cfg, err := loadConfig(args)
	if err != nil {
		cfg = config.Default()
	}
	client := newGatewayClient(cfg)

	var checks []*HealthCheck
	checks = append(checks, checkOllamaInstalled())
	checks = append(checks, checkGatewayReachable(client))
	checks = append(checks, checkModelAvailable(client))
	checks = append(checks, checkConfigValid(args))
	checks = append(checks, checkUploadDirWritable(cfg))
	return checks
}

// checkOllamaInstalled checks if the Ollama CLI is installed.
func checkOllamaInstalled() *HealthCheck {
	check := &HealthCheck{
		Name: "Ollama Installed",
	}

	cmd := exec.Command("ollama", "--version")
	output, err := cmd.Output()

	if err != nil {
		check.Status = CheckFail
		check.Message = "Ollama not installed"
		if runtime.GOOS == "windows" {
			check.Fix = "Download from https://ollama.ai/download"
		} else if runtime.GOOS == "darwin" {
			check.Fix = "Run: brew install ollama"
		} else {
			check.Fix = "Run: curl -fsSL https://ollama.ai/install.sh | sh"
		}
		return check
	}

	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	version := "unknown"
	if len(parts) > 0 {
		version = parts[len(parts)-1]
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Ollama installed (v%s)", version)
	return check
}

// checkGatewayReachable checks if the gateway responds and measures latency.
func checkGatewayReachable(client *gateway.Client) *HealthCheck {
	check := &HealthCheck{
		Name: "Gateway Reachable",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	start := time.Now()
	err := client.CheckRunning(ctx)
	latency := time.Since(start)

	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Gateway not reachable at %s", client.BaseURL())
		check.Fix = "Run: ollama serve"
		return check
	}

	if latency > time.Second {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Gateway reachable but slow (%s)", latency.Round(time.Millisecond))
		check.Fix = "Check system load on the gateway host"
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Gateway reachable (%s)", latency.Round(time.Millisecond))
	return check
}

// checkModelAvailable checks if the configured model is downloaded.
func checkModelAvailable(client *gateway.Client) *HealthCheck {
	check := &HealthCheck{
		Name: "Model Available",
	}

	modelName := client.Model()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Could not check model: %s", err)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", modelName)
		return check
	}

	found := false
	for _, m := range models {
		if m.Name == modelName || strings.HasPrefix(m.Name, modelName+":") {
			found = true
			break
		}
	}

	if !found {
		check.Status = CheckWarn
		check.Message = fmt.Sprintf("Model not downloaded: %s", modelName)
		check.Fix = fmt.Sprintf("Run: ollama pull %s", modelName)
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("Model available: %s", modelName)
	return check
}

// checkConfigValid checks if the configuration file is valid.
func checkConfigValid(args Args) *HealthCheck {
	check := &HealthCheck{
		Name: "Config Valid",
	}

	configPath := args.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.ConfigPath()
		if err != nil {
			check.Status = CheckWarn
			check.Message = "Could not determine config path"
			return check
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		check.Status = CheckPass
		check.Message = "Config valid (using defaults)"
		return check
	}

	if _, err := config.LoadFromPath(configPath); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Config invalid: %s", err)
		check.Fix = fmt.Sprintf("Edit %s or delete it to regenerate defaults", configPath)
		return check
	}

	check.Status = CheckPass
	check.Message = "Config valid"
	return check
}

// checkUploadDirWritable checks if the upload directory is writable.
func checkUploadDirWritable(cfg *config.Config) *HealthCheck {
	check := &HealthCheck{
		Name: "Upload Dir Writable",
	}

	uploadDir, err := cfg.UploadDir()
	if err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not determine upload directory: %s", err)
		return check
	}

	if err := os.MkdirAll(uploadDir, 0700); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Could not create upload directory: %s", err)
		check.Fix = fmt.Sprintf("Create manually: mkdir -p %s", uploadDir)
		return check
	}

	testFile := filepath.Join(uploadDir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0600); err != nil {
		check.Status = CheckFail
		check.Message = fmt.Sprintf("Upload directory not writable: %s", err)
		check.Fix = fmt.Sprintf("Check permissions: chmod 700 %s", uploadDir)
		return check
	}

	os.Remove(testFile)

	check.Status = CheckPass
	check.Message = "Upload directory writable"
	return check
}
