package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enricher/internal/model"
)

type enrichOptions struct {
	file               string
	name               string
	email              string
	title              string
	company            string
	industry           string
	location           string
	bio                string
	phone              string
	skills             string
	linkedin           string
	github             string
	twitter            string
	blog               string
	chatProvider       string
	chatModel          string
	embeddingProvider  string
	embeddingModel     string
	mode               string
	systemInstructions string
}

var enrichFlags enrichOptions

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single contact",
	Long:  "Enriches one contact given by flags or by a JSON file (--file, \"-\" for stdin) holding either a contact or a full request, and prints the response as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := buildEnrichRequest(cmd.InOrStdin())
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Pipeline.Enrich(ctx, req)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

// buildEnrichRequest assembles the request from --file or the contact
// flags. Model and mode flags override whatever the file holds.
func buildEnrichRequest(stdin io.Reader) (model.EnrichmentRequest, error) {
	var req model.EnrichmentRequest
	f := enrichFlags

	if f.file != "" {
		var err error
		if req, err = readRequestFile(f.file, stdin); err != nil {
			return req, err
		}
	} else {
		req.ContactInfo = contactFromFlags()
	}

	if f.chatProvider != "" || f.chatModel != "" {
		req.ChatModel = &model.ModelSelector{Provider: f.chatProvider, Name: f.chatModel}
	}
	if f.embeddingProvider != "" || f.embeddingModel != "" {
		req.EmbeddingModel = &model.ModelSelector{Provider: f.embeddingProvider, Name: f.embeddingModel}
	}
	if f.mode != "" {
		req.OptimizationMode = model.OptimizationMode(f.mode)
	}
	if f.systemInstructions != "" {
		req.SystemInstructions = f.systemInstructions
	}
	return req, nil
}

// readRequestFile accepts a full request ({"contactInfo": ...}) or a bare
// contact object.
func readRequestFile(path string, stdin io.Reader) (model.EnrichmentRequest, error) {
	var req model.EnrichmentRequest

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, eris.Wrap(err, "read contact file")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return req, eris.Wrap(err, "parse contact file")
	}
	if _, ok := envelope["contactInfo"]; ok {
		err = json.Unmarshal(data, &req)
	} else {
		err = json.Unmarshal(data, &req.ContactInfo)
	}
	if err != nil {
		return req, eris.Wrap(err, "parse contact file")
	}
	return req, nil
}

func contactFromFlags() model.ContactInfo {
	f := enrichFlags
	c := model.ContactInfo{
		Name:     f.name,
		Email:    f.email,
		Title:    f.title,
		Company:  f.company,
		Industry: f.industry,
		Location: f.location,
		Bio:      f.bio,
		Phone:    f.phone,
	}
	for _, s := range strings.Split(f.skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			c.Skills = append(c.Skills, s)
		}
	}
	sp := &model.SocialProfiles{LinkedIn: f.linkedin, GitHub: f.github, Twitter: f.twitter, PersonalBlog: f.blog}
	if !sp.IsEmpty() {
		c.SocialProfiles = sp
	}
	return c
}

func init() {
	fl := enrichCmd.Flags()
	fl.StringVar(&enrichFlags.file, "file", "", "JSON file holding a contact or request (\"-\" reads stdin)")
	fl.StringVar(&enrichFlags.name, "name", "", "contact name")
	fl.StringVar(&enrichFlags.email, "email", "", "contact email")
	fl.StringVar(&enrichFlags.title, "title", "", "job title")
	fl.StringVar(&enrichFlags.company, "company", "", "company")
	fl.StringVar(&enrichFlags.industry, "industry", "", "industry")
	fl.StringVar(&enrichFlags.location, "location", "", "location")
	fl.StringVar(&enrichFlags.bio, "bio", "", "short bio")
	fl.StringVar(&enrichFlags.phone, "phone", "", "phone number")
	fl.StringVar(&enrichFlags.skills, "skills", "", "comma-separated skills")
	fl.StringVar(&enrichFlags.linkedin, "linkedin", "", "LinkedIn profile URL")
	fl.StringVar(&enrichFlags.github, "github", "", "GitHub profile URL")
	fl.StringVar(&enrichFlags.twitter, "twitter", "", "Twitter handle or URL")
	fl.StringVar(&enrichFlags.blog, "blog", "", "personal blog URL")
	fl.StringVar(&enrichFlags.chatProvider, "chat-provider", "", "chat model provider")
	fl.StringVar(&enrichFlags.chatModel, "chat-model", "", "chat model name")
	fl.StringVar(&enrichFlags.embeddingProvider, "embedding-provider", "", "embedding model provider")
	fl.StringVar(&enrichFlags.embeddingModel, "embedding-model", "", "embedding model name")
	fl.StringVar(&enrichFlags.mode, "mode", "", "optimization mode: speed or balanced")
	fl.StringVar(&enrichFlags.systemInstructions, "instructions", "", "extra system instructions for the model")
	rootCmd.AddCommand(enrichCmd)
}
