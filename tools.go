package main

import (
	"bufio"
	"bytes"
	"fmt"
	"go/format"

	"os"
	"strings"
	"text/template"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Log functions with colors
func logInfo(message string) {
	fmt.Printf("%s[INFO]%s %s\n", ColorGreen, ColorReset, message)
}

func logSuccess(message string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", ColorBlue, ColorReset, message)
}

func logWarning(message string) {
	fmt.Printf("%s[WARNING]%s %s\n", ColorYellow, ColorReset, message)
}

func logError(message string) {
	fmt.Printf("%s[ERROR]%s %s\n", ColorRed, ColorReset, message)
}

func logStep(step int, message string) {
	fmt.Printf("%s[STEP %d]%s %s\n", ColorCyan, step, ColorReset, message)
}

// ============== GENERATE FUNCTIONS ==============

// TemplateData holds the data for template generation
type TemplateData struct {
	ModuleName      string
	LowerModuleName string
}

// Templates for each file type
var controllerTemplate = `package http

import (
	"github.com/maulanahdr/komentar/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type {{.ModuleName}}Controller struct {
	{{.ModuleName}}Usecase *usecase.{{.ModuleName}}Usecase
	Log         *zap.Logger
	Config      *koanf.Koanf
}

func New{{.ModuleName}}Controller({{.LowerModuleName}}Usecase *usecase.{{.ModuleName}}Usecase, zap *zap.Logger, koanf *koanf.Koanf) *{{.ModuleName}}Controller {
	return &{{.ModuleName}}Controller{
		{{.ModuleName}}Usecase: {{.LowerModuleName}}Usecase,
		Log:         zap,
		Config:      koanf,
	}
}
`

var usecaseTemplate = `package usecase

import (
	"github.com/maulanahdr/komentar/internal/repository"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type {{.ModuleName}}Usecase struct {
	{{.ModuleName}}Repository *repository.{{.ModuleName}}Repository
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func New{{.ModuleName}}Usecase({{.LowerModuleName}}Repository *repository.{{.ModuleName}}Repository, zap *zap.Logger, koanf *koanf.Koanf) *{{.ModuleName}}Usecase {
	return &{{.ModuleName}}Usecase{
		{{.ModuleName}}Repository: {{.LowerModuleName}}Repository,
		Log:            zap,
		Config:         koanf,
	}
}
`

var repositoryTemplate = `package repository

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type {{.ModuleName}}Repository struct {
	Log     *zap.Logger
	DBCache *redis.Client
	HTTP    *http.Client
	BaseURL string
}

func New{{.ModuleName}}Repository(zap *zap.Logger, dbCache *redis.Client, httpClient *http.Client, baseURL string) *{{.ModuleName}}Repository {
	return &{{.ModuleName}}Repository{
		Log:     zap,
		DBCache: dbCache,
		HTTP:    httpClient,
		BaseURL: baseURL,
	}
}
`

// App registration template
var appRegistrationTemplate = `	{{.LowerModuleName}}Repository := repository.New{{.ModuleName}}Repository(config.Log, config.DBCache, httpClient, contentBaseURL)
	{{.LowerModuleName}}Usecase := usecase.New{{.ModuleName}}Usecase({{.LowerModuleName}}Repository, config.Log, config.Config)
	{{.LowerModuleName}}Controller := http.New{{.ModuleName}}Controller({{.LowerModuleName}}Usecase, config.Log, config.Config)`

// RouteConfig field template
var routeConfigFieldTemplate = `	{{.ModuleName}}Controller         *http.{{.ModuleName}}Controller`

// RouteConfig initialization template
var routeConfigInitTemplate = `		{{.ModuleName}}Controller:         {{.LowerModuleName}}Controller,`

// Route group template
var routeGroupTemplate = `	{{.LowerModuleName}}Group := api.Group("/{{.LowerModuleName}}", c.AuthMiddleware.ProtectedRoute())
	//{{.LowerModuleName}}Group.Get("", c.{{.ModuleName}}Controller.Get{{.ModuleName}}())
	//{{.LowerModuleName}}Group.Post("", c.{{.ModuleName}}Controller.Create{{.ModuleName}}())
	//{{.LowerModuleName}}Group.Get("/:id", c.{{.ModuleName}}Controller.Get{{.ModuleName}}ById())
	//{{.LowerModuleName}}Group.Patch("/:id", c.{{.ModuleName}}Controller.Update{{.ModuleName}}())
	//{{.LowerModuleName}}Group.Delete("/:id", c.{{.ModuleName}}Controller.Delete{{.ModuleName}}())`

func runGenerate() {
	fmt.Println()
	fmt.Printf("%s%s%s\n", ColorBold, ColorCyan, "=========================================")
	fmt.Printf("%s%s%s\n", ColorBold, ColorCyan, "     Generate Boilerplate")
	fmt.Printf("%s%s%s\n", ColorBold, ColorCyan, "=========================================")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Enter %sModule Name%s (PascalCase): ", ColorBold, ColorReset)
	moduleName, _ := reader.ReadString('\n')
	moduleName = strings.TrimSpace(moduleName)

	if moduleName == "" {
		logError("Module name is required")
		fmt.Printf("%sExample: %s%s%s\n", ColorYellow, ColorBold, "Material", ColorReset)
		fmt.Printf("%sExample: %s%s%s\n", ColorYellow, ColorBold, "Reaction", ColorReset)
		fmt.Printf("%sExample: %s%s%s\n", ColorYellow, ColorBold, "Report", ColorReset)
		return
	}

	// Validate module name
	if !isValidModuleName(moduleName) {
		logError(fmt.Sprintf("Invalid module name '%s'. Module name should be in PascalCase.", moduleName))
		fmt.Printf("%sExample: %s%s%s\n", ColorYellow, ColorBold, "Material", ColorReset)
		fmt.Printf("%sExample: %s%s%s\n", ColorYellow, ColorBold, "Reaction", ColorReset)
		fmt.Printf("%sExample: %s%s%s\n", ColorYellow, ColorBold, "Report", ColorReset)
		return
	}

	data := TemplateData{
		ModuleName:      moduleName,
		LowerModuleName: strings.ToLower(moduleName),
	}

	logStep(1, fmt.Sprintf("Starting generation for module: %s%s%s", ColorBold, moduleName, ColorReset))

	// Generate files
	logStep(2, "Generating controller file...")
	if err := generateFile("internal/delivery/http/"+strings.ToLower(moduleName)+"_controller.go", controllerTemplate, data); err != nil {
		logError(fmt.Sprintf("Failed to generate controller: %v", err))
		return
	}
	logSuccess("Controller file generated successfully")

	logStep(3, "Generating usecase file...")
	if err := generateFile("internal/usecase/"+strings.ToLower(moduleName)+"_usecase.go", usecaseTemplate, data); err != nil {
		logError(fmt.Sprintf("Failed to generate usecase: %v", err))
		return
	}
	logSuccess("Usecase file generated successfully")

	logStep(4, "Generating repository file...")
	if err := generateFile("internal/repository/"+strings.ToLower(moduleName)+"_repository.go", repositoryTemplate, data); err != nil {
		logError(fmt.Sprintf("Failed to generate repository: %v", err))
		return
	}
	logSuccess("Repository file generated successfully")

	logStep(5, "Updating app.go...")
	if err := updateAppGo(data); err != nil {
		logError(fmt.Sprintf("Failed to update app.go: %v", err))
		return
	}
	logSuccess("app.go updated successfully")

	logStep(6, "Updating route.go...")
	if err := updateRouteGo(data); err != nil {
		logError(fmt.Sprintf("Failed to update route.go: %v", err))
		return
	}
	logSuccess("route.go updated successfully")

	logSuccess(fmt.Sprintf("Module %s%s%s generated successfully!", ColorBold, moduleName, ColorReset))
}

func isValidModuleName(name string) bool {
	if len(name) == 0 {
		return false
	}
	// Check if first character is uppercase
	if name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	return true
}

func generateFile(filePath, templateStr string, data TemplateData) error {
	// Check if file already exists
	if _, err := os.Stat(filePath); err == nil {
		logWarning(fmt.Sprintf("File %s already exists", filePath))
		fmt.Printf("Options:\n")
		fmt.Printf("%s1.%s Skip this file\n", ColorYellow, ColorReset)
		fmt.Printf("%s2.%s Overwrite this file\n", ColorRed, ColorReset)
		fmt.Printf("%s3.%s Create backup and overwrite\n", ColorCyan, ColorReset)
		fmt.Printf("Choose option (1/2/3): ")

		var choice string
		_, _ = fmt.Scanln(&choice)

		switch choice {
		case "1":
			logInfo(fmt.Sprintf("Skipping %s", filePath))
			return nil
		case "2":
			logWarning(fmt.Sprintf("Overwriting %s", filePath))
		case "3":
			backupPath := filePath + ".backup"
			if err := copyFile(filePath, backupPath); err != nil {
				return fmt.Errorf("error creating backup: %w", err)
			}
			logSuccess(fmt.Sprintf("Created backup: %s", backupPath))
			logWarning(fmt.Sprintf("Overwriting %s", filePath))
		default:
			logWarning(fmt.Sprintf("Invalid choice. Skipping %s", filePath))
			return nil
		}
	}

	tmpl, err := template.New("file").Parse(templateStr)
	if err != nil {
		return fmt.Errorf("error parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("error executing template: %w", err)
	}

	// Format the Go code
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		logWarning(fmt.Sprintf("Could not format code for %s: %v", filePath, err))
		formatted = buf.Bytes()
	}

	// Create directory if it doesn't exist
	dir := filePath[:strings.LastIndex(filePath, "/")]
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	// Write file
	// #nosec G306 -- File permissions 0644 are acceptable for source code files
	if err := os.WriteFile(filePath, formatted, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	logInfo(fmt.Sprintf("Created: %s", filePath))
	return nil
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	// #nosec G306 -- File permissions 0644 are acceptable for source code files
	return os.WriteFile(dst, input, 0644)
}

func updateAppGo(data TemplateData) error {
	filePath := "internal/config/app.go"

	// Read the file
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading app.go: %w", err)
	}

	// Parse the template
	tmpl, err := template.New("appRegistration").Parse(appRegistrationTemplate)
	if err != nil {
		return fmt.Errorf("error parsing app registration template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("error executing app registration template: %w", err)
	}

	// Find the position to insert the new code
	lines := strings.Split(string(content), "\n")
	var newLines []string
	inserted := false

	for _, line := range lines {
		newLines = append(newLines, line)

		// Look for the line with commentController initialization
		if strings.Contains(line, "commentController := http.NewCommentController") && !inserted {
			// Insert the new module registration after this line
			newLines = append(newLines, buf.String())
			inserted = true
		}

		// Also update the RouteConfig struct
		if strings.Contains(line, "CommentController *http.CommentController") {
			// Add the new controller field to RouteConfig
			routeTmpl, _ := template.New("routeConfigField").Parse(routeConfigFieldTemplate)
			var routeBuf bytes.Buffer
			_ = routeTmpl.Execute(&routeBuf, data)
			newLines = append(newLines, routeBuf.String())
		}

		// Update the RouteConfig initialization
		if strings.Contains(line, "CommentController: commentController,") {
			routeInitTmpl, _ := template.New("routeConfigInit").Parse(routeConfigInitTemplate)
			var routeInitBuf bytes.Buffer
			_ = routeInitTmpl.Execute(&routeInitBuf, data)
			newLines = append(newLines, routeInitBuf.String())
		}
	}

	// Write back to file
	updatedContent := strings.Join(newLines, "\n")
	// #nosec G306 -- File permissions 0644 are acceptable for source code files
	if err := os.WriteFile(filePath, []byte(updatedContent), 0644); err != nil {
		return fmt.Errorf("error writing updated app.go: %w", err)
	}

	logInfo(fmt.Sprintf("Updated: %s", filePath))
	return nil
}

func updateRouteGo(data TemplateData) error {
	filePath := "internal/delivery/http/route/route.go"

	// Read the file
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("error reading route.go: %w", err)
	}

	// Parse the template
	tmpl, err := template.New("routeGroup").Parse(routeGroupTemplate)
	if err != nil {
		return fmt.Errorf("error parsing route group template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("error executing route group template: %w", err)
	}

	// Find the position to insert the new route group (after the last material route)
	lines := strings.Split(string(content), "\n")
	var newLines []string

	for i, line := range lines {
		newLines = append(newLines, line)

		// Look for the last route group and insert after it
		if strings.Contains(line, "c.CommentController.ToggleLike)") && i < len(lines)-1 {
			// Insert the new route group
			newLines = append(newLines, "")
			newLines = append(newLines, buf.String())
		}
	}

	// Write back to file
	updatedContent := strings.Join(newLines, "\n")
	if err := os.WriteFile(filePath, []byte(updatedContent), 0644); err != nil {
		return fmt.Errorf("error writing updated route.go: %w", err)
	}

	logInfo(fmt.Sprintf("Updated: %s", filePath))
	return nil
}

// ============== MAIN MENU ==============

func main() {
	fmt.Println()
	fmt.Printf("%s%s%s\n", ColorBold, ColorPurple, "=========================================")
	fmt.Printf("%s%s%s\n", ColorBold, ColorPurple, "     Development Tools")
	fmt.Printf("%s%s%s\n", ColorBold, ColorPurple, "=========================================")
	fmt.Println()
	fmt.Printf("%sSelect an option:%s\n", ColorBold, ColorReset)
	fmt.Println()
	fmt.Printf("  %s1.%s Generate Boilerplate\n", ColorBold, ColorReset)
	fmt.Printf("  %s2.%s Exit\n", ColorBold, ColorReset)
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Choose option (1/2): ")
	input, _ := reader.ReadString('\n')
	choice := strings.TrimSpace(input)

	fmt.Println()

	switch choice {
	case "1":
		runGenerate()
	case "2":
		fmt.Println("Goodbye!")
	default:
		logError("Invalid option")
	}
}
