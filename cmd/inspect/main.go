// Command inspect prints users or one conversation from a Badger store.
// It opens the store read-only and can run next to a live server.
package main

import (
	"chatline/domain"
	"chatline/repositories"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	userA := flag.String("a", "", "First user of the conversation")
	userB := flag.String("b", "", "Second user of the conversation")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *userA == "" || *userB == "" {
		err = printUsers(db)
	} else {
		err = printConversation(db, *userA, *userB)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func printUsers(db *badger.DB) error {
	users, err := repositories.NewUserRepository(db).ListUsersExcept(context.Background(), "")
	if err != nil {
		return err
	}
	table := newTable("ID", "Full name", "Email", "Profile pic", "Created at")
	for _, u := range users {
		table.Append([]string{u.ID, u.FullName, u.Email, u.ProfilePic, u.CreatedAt.Format(time.DateTime)})
	}
	color.Cyan.Printf("%d users\n", len(users))
	table.Render()
	return nil
}

func printConversation(db *badger.DB, userA, userB string) error {
	messages, err := repositories.ReadConversation(db, userA, userB)
	if err != nil {
		return err
	}
	color.Cyan.Printf("%d messages between %s and %s\n", len(messages), userA, userB)
	table := newTable("Time", "From", "To", "Text", "Image")
	for _, m := range messages {
		table.Append([]string{
			m.CreatedAt.Format(time.TimeOnly),
			direction(m, userA),
			shortID(m.ReceiverID),
			m.Text,
			m.Image,
		})
	}
	table.Render()
	return nil
}

func direction(m domain.Message, userA string) string {
	if m.SenderID == userA {
		return color.Green.Sprint(shortID(m.SenderID))
	}
	return color.Yellow.Sprint(shortID(m.SenderID))
}

// shortID keeps the first 8 characters for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
