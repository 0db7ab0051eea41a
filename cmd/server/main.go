package main

import (
	"fmt"
	"log"

	"fieldos/internal/config"
	"fieldos/internal/email/noop"
	"fieldos/internal/email/ses"
	"fieldos/internal/event"
	"fieldos/internal/handler"
	"fieldos/internal/port"
	"fieldos/internal/repository/postgres"
	"fieldos/internal/router"
	"fieldos/internal/service"
	s3storage "fieldos/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepo(db, postgres.SequenceDefaults{
		QuotePrefix:   cfg.Billing.QuotePrefix,
		JobPrefix:     cfg.Billing.JobPrefix,
		InvoicePrefix: cfg.Billing.InvoicePrefix,
		Padding:       cfg.Billing.NumberPadding,
	})
	userRepo := postgres.NewUserRepo(db)
	clientRepo := postgres.NewClientRepo(db)
	seqRepo := postgres.NewSequenceRepo(db)
	quoteRepo := postgres.NewQuoteRepo(db, cfg.Billing.AllocateRetries)
	jobRepo := postgres.NewJobRepo(db, cfg.Billing.AllocateRetries)
	invoiceRepo := postgres.NewInvoiceRepo(db, cfg.Billing.AllocateRetries)
	attachmentRepo := postgres.NewAttachmentRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email delivery
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.PortalURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.PortalURL)
	}

	events := event.NewLogPublisher()

	// Initialize services
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg.JWT)
	tenantSvc := service.NewTenantService(tenantRepo, seqRepo)
	userSvc := service.NewUserService(userRepo)
	clientSvc := service.NewClientService(clientRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, jobRepo, quoteRepo, clientRepo, emailSender, events, cfg.Billing)
	jobSvc := service.NewJobService(jobRepo, clientRepo, invoiceSvc, events)
	quoteSvc := service.NewQuoteService(quoteRepo, clientRepo, jobSvc, emailSender, events)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, jobRepo, s3Client, &cfg.S3)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	tenantH := handler.NewTenantHandler(tenantSvc)
	userH := handler.NewUserHandler(userSvc)
	clientH := handler.NewClientHandler(clientSvc)
	quoteH := handler.NewQuoteHandler(quoteSvc)
	jobH := handler.NewJobHandler(jobSvc, attachmentSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	reportH := handler.NewReportHandler(invoiceSvc, tenantSvc)
	portalH := handler.NewPortalHandler(quoteSvc, invoiceSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins,
		authH, tenantH, userH, clientH, quoteH, jobH, invoiceH, reportH, portalH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
