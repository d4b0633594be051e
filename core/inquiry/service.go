package inquiry

import (
	"context"
	"net/mail"
	"time"

	"github.com/trezcool/shule/core"
)

const entityName = "Inquiry"

type (
	Repository interface {
		CreateInquiry(ctx context.Context, inq Inquiry) (Inquiry, error)
		// QueryAllInquiries returns all inquiries, newest first.
		QueryAllInquiries(ctx context.Context) ([]Inquiry, error)
		GetInquiryByID(ctx context.Context, id int) (Inquiry, error)
		FilterInquiriesByStatus(ctx context.Context, status string) ([]Inquiry, error)
		FilterInquiriesByEmail(ctx context.Context, email string) ([]Inquiry, error)
		CountInquiriesByStatus(ctx context.Context, status string) (int, error)
		// RecentInquiries returns the last `limit` inquiries, newest first.
		RecentInquiries(ctx context.Context, limit int) ([]Inquiry, error)
		UpdateInquiry(ctx context.Context, inq Inquiry) (Inquiry, error)
		DeleteInquiry(ctx context.Context, id int) error
	}

	Service struct {
		repo            Repository
		mailSvc         core.EmailService
		notifyOnRespond bool
		nowFunc         func() time.Time
	}
)

// NewService returns an inquiry Service.
// When notifyOnRespond is set, inquirers receive responses by email through mailSvc.
func NewService(repo Repository, mailSvc core.EmailService, notifyOnRespond bool) *Service {
	return &Service{
		repo:            repo,
		mailSvc:         mailSvc,
		notifyOnRespond: notifyOnRespond && mailSvc != nil,
		nowFunc:         time.Now,
	}
}

func (svc *Service) Create(ctx context.Context, ni NewInquiry) (Inquiry, error) {
	return svc.repo.CreateInquiry(ctx, Inquiry{
		Name:        ni.Name,
		Email:       ni.Email,
		Phone:       ni.Phone,
		Subject:     ni.Subject,
		Message:     ni.Message,
		Status:      StatusPending,
		CreatedDate: svc.nowFunc().UTC(),
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Inquiry, error) {
	return svc.repo.QueryAllInquiries(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Inquiry, error) {
	return svc.repo.GetInquiryByID(ctx, id)
}

func (svc *Service) FilterByStatus(ctx context.Context, status string) ([]Inquiry, error) {
	return svc.repo.FilterInquiriesByStatus(ctx, status)
}

func (svc *Service) FilterByEmail(ctx context.Context, email string) ([]Inquiry, error) {
	return svc.repo.FilterInquiriesByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) CountPending(ctx context.Context) (int, error) {
	return svc.repo.CountInquiriesByStatus(ctx, StatusPending)
}

func (svc *Service) Recent(ctx context.Context, limit int) ([]Inquiry, error) {
	return svc.repo.RecentInquiries(ctx, limit)
}

func (svc *Service) Update(ctx context.Context, id int, ui UpdateInquiry) (Inquiry, error) {
	inq, err := svc.repo.GetInquiryByID(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}

	inq.Name = ui.Name
	inq.Email = ui.Email
	inq.Phone = ui.Phone
	inq.Subject = ui.Subject
	inq.Message = ui.Message
	if ui.Status != "" {
		inq.Status = ui.Status
	}
	return svc.repo.UpdateInquiry(ctx, inq)
}

func (svc *Service) UpdateStatus(ctx context.Context, id int, us UpdateInquiryStatus) (Inquiry, error) {
	inq, err := svc.repo.GetInquiryByID(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	inq.Status = us.Status
	return svc.repo.UpdateInquiry(ctx, inq)
}

// Respond records the response, marks the inquiry as Responded and notifies the inquirer if enabled.
func (svc *Service) Respond(ctx context.Context, id int, ri RespondInquiry) (Inquiry, error) {
	inq, err := svc.repo.GetInquiryByID(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	inq.Respond(ri.Response, svc.nowFunc())

	if inq, err = svc.repo.UpdateInquiry(ctx, inq); err != nil {
		return Inquiry{}, err
	}
	if svc.notifyOnRespond {
		svc.mailSvc.SendMessages(newResponseMessage(inq))
	}
	return inq, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteInquiry(ctx, id)
}

type responseMailData struct {
	Name     string
	Subject  string
	Response string
}

func newResponseMessage(inq Inquiry) *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: inq.Name, Address: inq.Email}},
		Subject:      "Re: " + inq.Subject,
		TemplateName: "inquiry_response",
		TemplateData: responseMailData{
			Name:     inq.Name,
			Subject:  inq.Subject,
			Response: inq.Response.String,
		},
	}
}

// NotFound returns the error reported for a missing inquiry.
func NotFound(id int) error {
	return core.NewNotFoundError(entityName, "id", id)
}
