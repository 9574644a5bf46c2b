package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/bills"
	"github.com/garyjia/billed/internal/domain/entity"
)

// consoleNotifier prints alerts on the error stream
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) Alert(message string) {
	fmt.Fprintln(n.w, "!", strings.TrimSpace(message))
}

// consoleNavigator remembers the last route and announces it
type consoleNavigator struct {
	w     io.Writer
	route string
}

func (n *consoleNavigator) Navigate(route string) {
	n.route = route
	fmt.Fprintln(n.w, "->", route)
}

func printBillRows(w io.Writer, rows []service.BillRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNOM\tDATE\tMONTANT\tSTATUT")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f €\t%s\n",
			row.Bill.ID, row.Bill.Type, row.Bill.Name, row.Date, row.Bill.Amount, row.Status)
	}
	return tw.Flush()
}

func printGroups(w io.Writer, groups []service.DashboardGroup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, group := range groups {
		marker := "+"
		if group.Open {
			marker = "-"
		}
		fmt.Fprintf(tw, "%s %s (%d)\n", marker, group.Label, group.Count)
		for _, bill := range group.Bills {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%.2f €\n",
				bill.ID, bill.Email, bill.Name, displayDate(bill.Date), bill.Amount)
		}
	}
	return tw.Flush()
}

func printBill(w io.Writer, bill *entity.Bill) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", bill.ID)
	fmt.Fprintf(tw, "Statut\t%s\n", bills.FormatStatus(bill.Status))
	fmt.Fprintf(tw, "Email\t%s\n", bill.Email)
	fmt.Fprintf(tw, "Type\t%s\n", bill.Type)
	fmt.Fprintf(tw, "Nom\t%s\n", bill.Name)
	fmt.Fprintf(tw, "Date\t%s\n", displayDate(bill.Date))
	fmt.Fprintf(tw, "Montant TTC\t%.2f €\n", bill.Amount)
	fmt.Fprintf(tw, "TVA\t%s (%d %%)\n", bill.VAT, bill.Pct)
	fmt.Fprintf(tw, "Commentaire\t%s\n", bill.Commentary)
	fmt.Fprintf(tw, "Commentaire admin\t%s\n", bill.CommentAdmin)
	fmt.Fprintf(tw, "Justificatif\t%s (%s)\n", bill.FileName, bill.FileURL)
	return tw.Flush()
}

func displayDate(raw string) string {
	if formatted, err := bills.FormatDate(raw); err == nil {
		return formatted
	}
	return raw
}
