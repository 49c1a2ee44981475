// Command portalctl is a terminal client for the citizen-services portal.
//
// Configuration comes from flags and the environment (a .env file is
// loaded when present):
//
//	PORTAL_BASE_URL      backend base URL, e.g. https://portal.example.gov.in/api
//	PORTAL_SESSION_FILE  session file path (default ~/.portalctl/session.json)
//
// Usage:
//
//	portalctl login -email you@example.com -password secret
//	portalctl whoami
//	portalctl submit -type birth-certificate -name "A. Sharma" -whatsapp 9876543210 \
//	    -aadhaar 123412341234 -utr UTR123 -amount 50 -receipt ./receipt.jpg
//	portalctl list -status pending -page 1
//	portalctl get -id <applicationId>
//	portalctl review -id <applicationId> -decision approved -remarks "verified"
//	portalctl certificate -id <applicationId> -file ./certificate.pdf
//	portalctl url -id <applicationId> -file-id <fileId>
//	portalctl url -id <applicationId> -kind certificate
//	portalctl logout
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	portal "github.com/gramseva/portal"
	"github.com/gramseva/portal/session"
)

type stderrNotices struct{}

func (stderrNotices) Notify(n portal.Notice) {
	prefix := "ok"
	if n.Level == portal.NoticeError {
		prefix = "error"
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", prefix, n.Message)
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: portalctl <login|register|whoami|logout|submit|list|get|review|certificate|url> [flags]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := buildClient()
	if err != nil {
		fatal(err)
	}
	defer client.Close()

	if _, err := client.Seed(ctx); err != nil {
		fatal(err)
	}

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, client, os.Args[2:])
	case "register":
		err = runRegister(ctx, client, os.Args[2:])
	case "whoami":
		err = runWhoami(ctx, client)
	case "logout":
		err = client.Logout(ctx)
	case "submit":
		err = runSubmit(ctx, client, os.Args[2:])
	case "list":
		err = runList(ctx, client, os.Args[2:])
	case "get":
		err = runGet(ctx, client, os.Args[2:])
	case "review":
		err = runReview(ctx, client, os.Args[2:])
	case "certificate":
		err = runCertificate(ctx, client, os.Args[2:])
	case "url":
		err = runURL(ctx, client, os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fatal(err)
	}
}

func buildClient() (*portal.Client, error) {
	baseURL := os.Getenv("PORTAL_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("PORTAL_BASE_URL is not set")
	}

	sessionFile := os.Getenv("PORTAL_SESSION_FILE")
	if sessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		sessionFile = filepath.Join(home, ".portalctl", "session.json")
	}

	return portal.New().
		WithBaseURL(baseURL).
		WithSessionStore(session.NewFileStore(sessionFile)).
		WithNoticeSink(stderrNotices{}).
		Build()
}

func runLogin(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	state, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func runRegister(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	return client.Register(ctx, portal.RegisterInput{
		FullName: *name,
		Email:    *email,
		Password: *password,
	})
}

func runWhoami(ctx context.Context, client *portal.Client) error {
	state, err := client.Verify(ctx)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func runSubmit(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	docType := fs.String("type", "", "document type, e.g. birth-certificate")
	name := fs.String("name", "", "applicant name")
	whatsapp := fs.String("whatsapp", "", "10-digit whatsapp number")
	aadhaar := fs.String("aadhaar", "", "12-digit aadhaar number")
	utr := fs.String("utr", "", "payment UTR number")
	amount := fs.Float64("amount", 0, "payment amount")
	receiptPath := fs.String("receipt", "", "payment receipt image path")
	fieldsJSON := fs.String("fields", "", "document-specific fields as JSON object")
	_ = fs.Parse(args)

	fields := map[string]string{}
	if *fieldsJSON != "" {
		if err := json.Unmarshal([]byte(*fieldsJSON), &fields); err != nil {
			return fmt.Errorf("parse -fields: %w", err)
		}
	}

	receipt, err := openUpload(*receiptPath)
	if err != nil {
		return err
	}
	defer receipt.close()

	result, err := client.SubmitApplication(ctx, portal.SubmitInput{
		DocumentType:   *docType,
		ApplicantName:  *name,
		WhatsAppNumber: *whatsapp,
		AadhaarNumber:  *aadhaar,
		Fields:         fields,
		Payment:        portal.PaymentDetails{UTRNumber: *utr, Amount: *amount},
		Receipt:        receipt.upload,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runList(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	category := fs.String("category", "", "filter by category")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	_ = fs.Parse(args)

	result, err := client.ListApplications(ctx, portal.ListOptions{
		Status:   portal.ApplicationStatus(*status),
		Category: *category,
		Page:     *page,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runGet(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	id := fs.String("id", "", "application id")
	_ = fs.Parse(args)

	detail, err := client.GetApplication(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(detail)
}

func runReview(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	id := fs.String("id", "", "application id")
	decision := fs.String("decision", "", "approved or rejected")
	remarks := fs.String("remarks", "", "review remarks")
	_ = fs.Parse(args)

	app, err := client.ReviewApplication(ctx, *id, portal.ReviewDecision(*decision), *remarks)
	if err != nil {
		return err
	}
	return printJSON(app)
}

func runCertificate(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("certificate", flag.ExitOnError)
	id := fs.String("id", "", "application id")
	file := fs.String("file", "", "certificate file path")
	_ = fs.Parse(args)

	cert, err := openUpload(*file)
	if err != nil {
		return err
	}
	defer cert.close()

	app, err := client.AttachCertificate(ctx, *id, cert.upload)
	if err != nil {
		return err
	}
	return printJSON(app)
}

func runURL(ctx context.Context, client *portal.Client, args []string) error {
	fs := flag.NewFlagSet("url", flag.ExitOnError)
	id := fs.String("id", "", "application id")
	fileID := fs.String("file-id", "", "uploaded file id")
	kind := fs.String("kind", "file", "file or certificate")
	_ = fs.Parse(args)

	signed, err := client.SignedFileURL(ctx, portal.FileKind(*kind), *id, *fileID)
	if err != nil {
		return err
	}
	fmt.Println(signed.URL)
	return nil
}

type uploadFile struct {
	upload *portal.FileUpload
	f      *os.File
}

func (u *uploadFile) close() {
	if u.f != nil {
		_ = u.f.Close()
	}
}

func openUpload(path string) (*uploadFile, error) {
	if path == "" {
		return &uploadFile{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	return &uploadFile{
		f: f,
		upload: &portal.FileUpload{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Reader:      f,
		},
	}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "portalctl:", err)
	os.Exit(1)
}
