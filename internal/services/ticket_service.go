package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/utils"
)

// TicketService renders the PDF e-ticket of an accepted booking.
type TicketService struct {
	Bookings  BookingService
	Log       logger.Logger
	RequestID string
	Loader    func(ctx context.Context, p domain.Principal, bookingID int64) (models.BookingView, error)
}

func (s TicketService) load(ctx context.Context, p domain.Principal, bookingID int64) (models.BookingView, error) {
	if s.Loader != nil {
		return s.Loader(ctx, p, bookingID)
	}
	return s.Bookings.GetBooking(ctx, p, bookingID)
}

func (s TicketService) GenerateETicket(ctx context.Context, p domain.Principal, bookingID int64) ([]byte, string, error) {
	v, err := s.load(ctx, p, bookingID)
	if err != nil {
		return nil, "", err
	}
	if v.Status != models.StatusAccepted {
		return nil, "", domain.ConflictError{Resource: "ticket", Msg: fmt.Sprintf("booking %d is %s, not ACCEPTED", v.ID, v.Status)}
	}
	utils.LogEvent(s.Log, s.RequestID, "tickets", "generate_eticket", fmt.Sprintf("booking_id=%d", v.ID))
	return buildETicketPDF(v)
}

func buildETicketPDF(v models.BookingView) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : #%d", v.ID),
		fmt.Sprintf("Ticket         : %s", ticketCode(v)),
		fmt.Sprintf("Passenger      : #%d", v.PassengerID),
		fmt.Sprintf("Driver         : #%d", v.DriverID),
		fmt.Sprintf("Route          : %s -> %s", safe(v.Source, "-"), safe(v.Destination, "-")),
		fmt.Sprintf("Date / Time    : %s %s", safe(v.TripDate, "-"), safe(v.TripTime, "-")),
		fmt.Sprintf("Seats          : %d", v.SeatsBooked),
		fmt.Sprintf("Price per seat : %s", utils.FormatPrice(v.PricePerSeat)),
		fmt.Sprintf("Total          : %s", utils.FormatPrice(v.TotalPrice)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Valid for %d seat(s) on this ride only. Show this ticket to the driver at pickup.", v.SeatsBooked), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d_%s.pdf", v.ID, utils.SafeFilenamePart(v.Source+"_"+v.Destination))
	return buf.Bytes(), filename, nil
}

func ticketCode(v models.BookingView) string {
	return fmt.Sprintf("TCK-%d-%d-%s", v.RideID, v.ID, strings.ReplaceAll(v.TripDate, "-", ""))
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
