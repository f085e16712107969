package notify

import (
	"fmt"
	"html"
	"time"
)

const dueDateLayout = "Jan 2, 2006"

// BorrowConfirmation is sent right after a successful borrow.
func BorrowConfirmation(name, bookTitle string, due time.Time) Notification {
	dueStr := due.Format(dueDateLayout)
	return Notification{
		Subject: "Book Borrowed",
		HTML: fmt.Sprintf(`<h2>Borrow Confirmation</h2>
<p>Dear %s,</p>
<p>You have successfully borrowed <strong>%s</strong>.</p>
<p>Due date: <strong>%s</strong></p>
<p>Please return it on time.</p>`,
			html.EscapeString(name), html.EscapeString(bookTitle), dueStr),
		Text: fmt.Sprintf("Hello %s, you borrowed %q from our library. Due date: %s", name, bookTitle, dueStr),
	}
}

// OverdueAlert is sent by the overdue sweep.
func OverdueAlert(name, bookTitle string, daysOverdue int) Notification {
	return Notification{
		Subject: "Book Overdue Alert",
		HTML: fmt.Sprintf(`<h2>Overdue Alert</h2>
<p>Dear %s,</p>
<p>The book <strong>%s</strong> is now <strong>%d days overdue</strong>.</p>
<p>Please return it as soon as possible.</p>`,
			html.EscapeString(name), html.EscapeString(bookTitle), daysOverdue),
		Text: fmt.Sprintf("Hello %s, %q is %d days overdue. Please return it as soon as possible.", name, bookTitle, daysOverdue),
	}
}
