// keygen writes a fresh Ed25519 key pair for JWT signing as PKCS#8 and PKIX PEM files.
// Point JWT_PRIVATE_KEY and JWT_PUBLIC_KEY at the results.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"chat-server/backend/internal/security"
)

func main() {
	privPath := flag.String("private", "jwt_private.pem", "output path of the signing key")
	pubPath := flag.String("public", "jwt_public.pem", "output path of the verifying key")
	force := flag.Bool("force", false, "overwrite existing files")
	flag.Parse()

	if !*force {
		for _, p := range []string{*privPath, *pubPath} {
			if _, err := os.Stat(p); err == nil {
				log.Fatalf("keygen: %s exists; pass -force to overwrite", p)
			} else if !errors.Is(err, fs.ErrNotExist) {
				log.Fatalf("keygen: %v", err)
			}
		}
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatalf("keygen: generate: %v", err)
	}
	privPEM, err := security.EncodeSigningKey(priv)
	if err != nil {
		log.Fatalf("keygen: %v", err)
	}
	pubPEM, err := security.EncodeVerifyingKey(pub)
	if err != nil {
		log.Fatalf("keygen: %v", err)
	}
	if err := os.WriteFile(*privPath, privPEM, 0o600); err != nil {
		log.Fatalf("keygen: %v", err)
	}
	if err := os.WriteFile(*pubPath, pubPEM, 0o644); err != nil {
		log.Fatalf("keygen: %v", err)
	}
	fmt.Printf("wrote %s and %s\n", *privPath, *pubPath)
}
