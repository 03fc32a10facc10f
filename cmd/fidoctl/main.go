package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func (c *client) postAndPrint(path string, payload any) error {
	b, _ := json.Marshal(payload)
	status, body, err := c.do("POST", path, b)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("%s fallo: status=%d body=%s", path, status, string(body))
	}
	c.print(status, body)
	return nil
}

func main() {
	var (
		baseURL = envOr("FIDOCTL_URL", "http://localhost:8080")
		out     = envOr("FIDOCTL_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "fidoctl",
		Short: "CLI contra el fido-gateway (testing manual de flujos)",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del gateway (env FIDOCTL_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{BaseURL: baseURL, OutFormat: out, HTTP: &http.Client{Timeout: timeout}}

	// ─── login (password grant) ───
	var loginUser, loginPass, loginScope string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Password grant vía el gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loginUser == "" || loginPass == "" {
				return fmt.Errorf("--username y --password son requeridos")
			}
			return cl.postAndPrint("/oauth2/login", map[string]string{
				"username": loginUser,
				"password": loginPass,
				"scope":    loginScope,
			})
		},
	}
	loginCmd.Flags().StringVar(&loginUser, "username", "", "Usuario")
	loginCmd.Flags().StringVar(&loginPass, "password", "", "Password")
	loginCmd.Flags().StringVar(&loginScope, "scope", "", "Scope (opcional)")

	// ─── token ───
	tokenCmd := &cobra.Command{Use: "token", Short: "Operaciones sobre tokens"}

	var introspectToken string
	introspectCmd := &cobra.Command{
		Use:   "introspect",
		Short: "Introspección RFC 7662",
		RunE: func(cmd *cobra.Command, args []string) error {
			if introspectToken == "" {
				return fmt.Errorf("--token es requerido")
			}
			return cl.postAndPrint("/oauth2/introspect", map[string]string{"token": introspectToken})
		},
	}
	introspectCmd.Flags().StringVar(&introspectToken, "token", "", "Token a introspectar")

	var revokeToken, revokeHint string
	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revocación RFC 7009",
		RunE: func(cmd *cobra.Command, args []string) error {
			if revokeToken == "" {
				return fmt.Errorf("--token es requerido")
			}
			return cl.postAndPrint("/oauth2/revoke", map[string]string{
				"token":         revokeToken,
				"tokenTypeHint": revokeHint,
			})
		},
	}
	revokeCmd.Flags().StringVar(&revokeToken, "token", "", "Token a revocar")
	revokeCmd.Flags().StringVar(&revokeHint, "hint", "", "token_type_hint (opcional)")

	var refreshToken, refreshScope string
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh grant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refreshToken == "" {
				return fmt.Errorf("--refresh-token es requerido")
			}
			return cl.postAndPrint("/oauth2/refresh", map[string]string{
				"refreshToken": refreshToken,
				"scope":        refreshScope,
			})
		},
	}
	refreshCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token")
	refreshCmd.Flags().StringVar(&refreshScope, "scope", "", "Scope (opcional)")

	tokenCmd.AddCommand(introspectCmd, revokeCmd, refreshCmd)

	// ─── authorize-url ───
	var authRedirect, authState, authScope string
	authorizeCmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Arma la URL de autorización del provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if authRedirect != "" {
				q.Set("redirect_uri", authRedirect)
			}
			if authState != "" {
				q.Set("state", authState)
			}
			if authScope != "" {
				q.Set("scope", authScope)
			}
			path := "/oauth2/authorize-url"
			if enc := q.Encode(); enc != "" {
				path += "?" + enc
			}
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("authorize-url fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	authorizeCmd.Flags().StringVar(&authRedirect, "redirect-uri", "", "redirect_uri (opcional)")
	authorizeCmd.Flags().StringVar(&authState, "state", "", "state (opcional, se genera si falta)")
	authorizeCmd.Flags().StringVar(&authScope, "scope", "", "scope (opcional)")

	// ─── native (driver del flujo passkey) ───
	nativeCmd := &cobra.Command{Use: "native", Short: "Driver del flujo nativo passkey"}

	var initClientID, initRedirect, initScope string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Paso 1: inicializa el flow (devuelve flowId)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if initClientID == "" {
				return fmt.Errorf("--client-id es requerido")
			}
			return cl.postAndPrint("/native-auth/init", map[string]string{
				"clientId":    initClientID,
				"redirectUri": initRedirect,
				"scope":       initScope,
			})
		},
	}
	initCmd.Flags().StringVar(&initClientID, "client-id", "", "clientId OAuth2")
	initCmd.Flags().StringVar(&initRedirect, "redirect-uri", "", "redirectUri (opcional)")
	initCmd.Flags().StringVar(&initScope, "scope", "", "scope (opcional)")

	var chFlowID, chAuthnID string
	challengeCmd := &cobra.Command{
		Use:   "challenge",
		Short: "Paso 2: selecciona el autenticador (devuelve requestId + challenge)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if chFlowID == "" || chAuthnID == "" {
				return fmt.Errorf("--flow-id y --authenticator-id son requeridos")
			}
			return cl.postAndPrint("/native-auth/challenge", map[string]string{
				"flowId":          chFlowID,
				"authenticatorId": chAuthnID,
			})
		},
	}
	challengeCmd.Flags().StringVar(&chFlowID, "flow-id", "", "flowId del init")
	challengeCmd.Flags().StringVar(&chAuthnID, "authenticator-id", "", "authenticatorId del provider")

	var vfFile string
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Paso 3: envía la assertion (JSON del VerifyRequest desde archivo o stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if vfFile == "" || vfFile == "-" {
				raw, err = io.ReadAll(os.Stdin)
			} else {
				raw, err = os.ReadFile(vfFile)
			}
			if err != nil {
				return err
			}
			status, body, err := cl.do("POST", "/native-auth/verify", raw)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("verify fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&vfFile, "file", "-", "Archivo con el body JSON (default stdin)")

	nativeCmd.AddCommand(initCmd, challengeCmd, verifyCmd)

	// ─── admin ───
	adminCmd := &cobra.Command{Use: "admin", Short: "Sesión administrativa del gateway"}
	refreshSessionCmd := &cobra.Command{
		Use:   "refresh-session",
		Short: "Invalida y recrea la sesión admin cacheada",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/oauth2/admin-session/refresh", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("refresh-session fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	adminCmd.AddCommand(refreshSessionCmd)

	root.AddCommand(loginCmd, tokenCmd, authorizeCmd, nativeCmd, adminCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
