// passtool hashes a password read from the terminal.  With --data-project
// and --email it also writes the user document, which is how the two
// accounts get provisioned.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"ourstory/dbtypes"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var (
	dataProject = flag.String("data-project", "", "GCP project that contains the application state.  If empty, just print the hash.")
	email       = flag.String("email", "", "Email address of the user to provision.")
	member      = flag.String("member", "", "Member slot for the user (a or b).")
)

func do(ctx context.Context) error {
	fmt.Print("Password: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("while reading password: %w", err)
	}
	fmt.Println()

	hash, err := bcrypt.GenerateFromPassword(pass, 0)
	if err != nil {
		return fmt.Errorf("while hashing password: %w", err)
	}

	if *dataProject == "" {
		fmt.Println(string(hash))
		return nil
	}

	if *email == "" {
		return fmt.Errorf("--email is required with --data-project")
	}
	if *member != "a" && *member != "b" {
		return fmt.Errorf("--member must be a or b")
	}

	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}
	defer fstore.Close()

	ref := fstore.Collection(dbtypes.UsersCollection).NewDoc()
	user := &dbtypes.User{
		ID:           ref.ID,
		Email:        *email,
		PasswordHash: string(hash),
		Member:       *member,
	}
	if _, err := ref.Create(ctx, user); err != nil {
		return fmt.Errorf("while creating user %q: %w", *email, err)
	}

	fmt.Printf("Created user %s as member %s\n", *email, *member)
	return nil
}

func main() {
	flag.Parse()

	if err := do(context.Background()); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
