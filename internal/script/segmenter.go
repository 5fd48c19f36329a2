// Package script turns screenplay text into validated scene records. The
// primary path is an LLM breakdown with schema-constrained output; every
// failure on that path degrades to the deterministic fallback parser so a
// job never dies on a parse error.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/config"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
)

// Processor analyzes scripts and develops concepts. A Processor built
// without an API key still works, using only the fallback parser.
type Processor struct {
	client  openai.Client
	model   string
	enabled bool
}

// NewProcessor builds a Processor against an OpenAI-compatible endpoint.
// An empty apiKey disables the LLM path entirely.
func NewProcessor(apiKey, baseURL, model string) *Processor {
	p := &Processor{model: model}
	if apiKey == "" {
		log.Printf("[!] No LLM API key, script analysis will use the fallback parser")
		return p
	}
	p.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	p.enabled = true
	return p
}

type llmDialogue struct {
	Character string   `json:"character" jsonschema_description:"Speaker name"`
	Text      string   `json:"text" jsonschema_description:"The spoken line, without stage directions"`
	Emotion   string   `json:"emotion" jsonschema_description:"Emotion the line is delivered with"`
	NonVerbal []string `json:"non_verbal" jsonschema_description:"Non-verbal sounds accompanying the line, e.g. sigh, laugh"`
}

type llmScene struct {
	SceneNumber      int           `json:"scene_number"`
	Location         string        `json:"location" jsonschema_description:"Scene heading, e.g. INT. OFFICE - DAY"`
	TimeOfDay        string        `json:"time_of_day"`
	Description      string        `json:"description" jsonschema_description:"Detailed visual description for video generation"`
	Characters       []string      `json:"characters"`
	Dialogue         []llmDialogue `json:"dialogue"`
	Actions          []string      `json:"actions"`
	CameraDirections []string      `json:"camera_directions"`
	SoundEffects     []string      `json:"sound_effects"`
	HumanSounds      []string      `json:"human_sounds" jsonschema_description:"Non-verbal human sounds that add realism: laughter, sighs, gasps, breathing"`
	DurationEstimate float64       `json:"duration_estimate" jsonschema_description:"Estimated scene duration in seconds"`
}

type breakdown struct {
	Scenes []llmScene `json:"scenes"`
}

// GenerateSchema builds a strict JSON schema for structured outputs.
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var breakdownSchema = GenerateSchema[breakdown]()

const analyzePrompt = `You are an expert film script analyzer and video production planner.

Analyze this script and break it down into individual scenes. For each scene provide:
1. Scene location and time of day
2. Characters present
3. All dialogue with speaker and emotion
4. Physical actions and movements
5. Camera directions (pan, zoom, tracking, etc.)
6. Required sound effects
7. Estimated duration in seconds
8. Non-verbal human sounds that would add realism: laughter, chuckles, sighs, groans, gasps, screams, crying, coughs, yawns, breathing, effort sounds

Script:
%s`

// Segment breaks script text into scenes ready for generation. LLM errors
// are logged and absorbed; the deterministic parser is the floor.
func (p *Processor) Segment(ctx context.Context, scriptText string, opts config.Options) ([]scene.Scene, error) {
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(scriptText) == "" {
		return nil, fmt.Errorf("script: empty input")
	}

	maxScene := float64(opts.MaxSceneDuration)
	scenes, ok := p.analyze(ctx, scriptText, opts)
	if !ok {
		scenes = Fallback(scriptText, maxScene)
	}

	for i := range scenes {
		scenes[i].Resolution = opts.Resolution
		scenes[i].FPS = opts.FPS
		scenes[i].Segments = scene.Split(scenes[i], maxScene)
	}
	log.Printf("[*] Script broken down into %d scenes", len(scenes))
	return scenes, nil
}

// analyze is the LLM path. Returns ok=false whenever the fallback should
// take over.
func (p *Processor) analyze(ctx context.Context, scriptText string, opts config.Options) ([]scene.Scene, bool) {
	if !p.enabled {
		return nil, false
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "scene_breakdown",
		Description: openai.String("Scene-by-scene breakdown of a film script"),
		Schema:      breakdownSchema,
		Strict:      openai.Bool(true),
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert script analyzer for AI video generation."),
			openai.UserMessage(fmt.Sprintf(analyzePrompt, scriptText)),
		},
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(0.7),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		log.Printf("[!] LLM script analysis failed: %v", err)
		return nil, false
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		log.Printf("[!] LLM returned an empty breakdown")
		return nil, false
	}

	var bd breakdown
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &bd); err != nil {
		log.Printf("[!] LLM breakdown did not parse: %v", err)
		return nil, false
	}
	if len(bd.Scenes) == 0 {
		return nil, false
	}

	maxScene := float64(opts.MaxSceneDuration)
	scenes := make([]scene.Scene, 0, len(bd.Scenes))
	for i, ls := range bd.Scenes {
		sc := scene.Scene{
			ID:              fmt.Sprintf("scene_%03d", i+1),
			Description:     ls.Description,
			Duration:        clampDuration(ls.DurationEstimate, maxScene),
			Location:        ls.Location,
			TimeOfDay:       strings.ToLower(ls.TimeOfDay),
			Characters:      ls.Characters,
			Actions:         ls.Actions,
			Environment:     ls.Location,
			CameraMovements: ls.CameraDirections,
			SoundEffects:    ls.SoundEffects,
			HumanSounds:     ls.HumanSounds,
		}
		for _, d := range ls.Dialogue {
			sc.Dialogue = append(sc.Dialogue, scene.DialogueLine{
				Character: d.Character,
				Text:      d.Text,
				Emotion:   d.Emotion,
				NonVerbal: d.NonVerbal,
			})
		}
		sc.MusicMood = MusicMood(sc.Description)
		sc.EmotionExpressions = dialogueEmotions(sc.Dialogue)
		if err := sc.Validate(); err != nil {
			log.Printf("[!] LLM produced an invalid scene, reverting to fallback parser: %v", err)
			return nil, false
		}
		scenes = append(scenes, sc)
	}
	return scenes, true
}

const developPrompt = `You are an expert screenwriter creating scripts for AI video generation.

Create a complete %s script based on this concept:
"%s"

Requirements:
- Include detailed scene descriptions for AI video generation
- Add camera movements and cinematography notes in brackets [CLOSE-UP], [PAN LEFT]
- Include realistic dialogue with emotions
- Add non-verbal human sounds for realism
- Break into scenes of 5-30 seconds each
- Sound notes in parentheses (thunder rumbles)

Format the script in standard screenplay format with scene headings
(INT./EXT. LOCATION - TIME), action lines in present tense, character
names in CAPS, and dialogue. Output only the script text.`

// Develop turns a concept into a full script and segments it. Without an
// LLM it emits the template script so downstream flow stays exercised.
func (p *Processor) Develop(ctx context.Context, concept string, opts config.Options) (string, []scene.Scene, error) {
	if err := opts.Normalize(); err != nil {
		return "", nil, err
	}

	scriptText := ""
	if p.enabled {
		completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(fmt.Sprintf(developPrompt, "short film", concept)),
			},
			Model:       openai.ChatModel(p.model),
			Temperature: openai.Float(0.8),
		})
		if err != nil {
			log.Printf("[!] Concept development failed: %v", err)
		} else if len(completion.Choices) > 0 {
			scriptText = strings.TrimSpace(completion.Choices[0].Message.Content)
		}
	}
	if scriptText == "" {
		scriptText = DevelopFallback(concept)
	}

	scenes, err := p.Segment(ctx, scriptText, opts)
	if err != nil {
		return scriptText, nil, err
	}
	return scriptText, scenes, nil
}

func clampDuration(d, maxScene float64) float64 {
	if d < 5 {
		return 5
	}
	if d > maxScene {
		return maxScene
	}
	return d
}
