// seed inserts development sample data for local testing: one workspace, three users, a direct
// chat, a group chat, and a greeting message. Idempotent: skips everything if the dev user exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	chatdomain "chat-server/backend/internal/chat/domain"
	chatrepo "chat-server/backend/internal/chat/repository"
	"chat-server/backend/internal/config"
	"chat-server/backend/internal/db"
	"chat-server/backend/internal/security"
	userdomain "chat-server/backend/internal/user/domain"
	userrepo "chat-server/backend/internal/user/repository"
)

const (
	devWorkspace = "Acme Dev"
	devPassword  = "password123"
	devUserEmail = "dev@example.com"
)

var devUsers = []userdomain.CreateUser{
	{FullName: "Dev User", Email: devUserEmail, Workspace: devWorkspace, Password: devPassword},
	{FullName: "Member User", Email: "member@example.com", Workspace: devWorkspace, Password: devPassword},
	{FullName: "Third User", Email: "third@example.com", Workspace: devWorkspace, Password: devPassword},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	users := userrepo.NewPostgresRepository(conn)
	chats := chatrepo.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", devUserEmail)
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash(devPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ids := make([]int64, 0, len(devUsers))
	var wsID int64
	for _, in := range devUsers {
		u, err := users.Create(ctx, in, passwordHash)
		if err != nil {
			log.Fatalf("create user %s: %v", in.Email, err)
		}
		ids = append(ids, u.ID)
		wsID = u.WorkspaceID
	}

	direct := &chatdomain.Chat{WorkspaceID: wsID, Type: chatdomain.ChatTypeSingle, Members: ids[:2]}
	if err := chats.Create(ctx, direct); err != nil {
		log.Fatalf("create direct chat: %v", err)
	}
	name := "general"
	group := &chatdomain.Chat{WorkspaceID: wsID, Name: &name, Type: chatdomain.ChatTypePrivateChannel, Members: ids}
	if err := chats.Create(ctx, group); err != nil {
		log.Fatalf("create group chat: %v", err)
	}
	if err := chats.CreateMessage(ctx, &chatdomain.Message{
		ChatID:   group.ID,
		SenderID: ids[0],
		Content:  "Welcome to #general",
		Files:    []string{},
	}); err != nil {
		log.Fatalf("create message: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Workspace %q (id %d)\n", devWorkspace, wsID)
	for _, in := range devUsers {
		fmt.Printf("Login: %s / %s\n", in.Email, devPassword)
	}
}
