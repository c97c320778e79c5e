package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/automagictv/remy/internal/config"
	"github.com/automagictv/remy/internal/errors"
	"github.com/automagictv/remy/internal/logger"
	"github.com/automagictv/remy/internal/message"
	"github.com/automagictv/remy/internal/metrics"
	"github.com/automagictv/remy/internal/sentry"
	"github.com/automagictv/remy/internal/services/recipe"
	"github.com/automagictv/remy/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Options tune the command handler. Zero values take the defaults.
type Options struct {
	RecipeLimit  int
	MessageLimit int
	Tags         validation.TagSet
}

// Handler runs chat commands against the recipe provider and replies through
// the sender. It keeps no state between commands.
type Handler struct {
	provider recipe.Provider
	sender   Sender
	opts     Options
}

func NewHandler(provider recipe.Provider, sender Sender, opts Options) *Handler {
	if opts.RecipeLimit <= 0 {
		opts.RecipeLimit = recipe.DefaultLimit
	}
	if opts.MessageLimit <= 0 {
		opts.MessageLimit = message.DefaultCharLimit
	}
	if opts.Tags == nil {
		opts.Tags = validation.NewTagSet(validation.DefaultTags())
	}
	return &Handler{
		provider: provider,
		sender:   sender,
		opts:     opts,
	}
}

// Dispatch handles one command. Command failures are answered with a reply
// and do not return an error; only a failure to deliver that reply does.
func (h *Handler) Dispatch(ctx context.Context, cmd Command) error {
	startTime := time.Now()
	name := metricName(cmd.Name)

	slog.InfoContext(ctx, "Handling command", "command", name, "chat_id", cmd.ChatID, "update_id", cmd.UpdateID)

	err := h.run(ctx, cmd)

	status := "success"
	if err != nil {
		status = strings.ToLower(string(errors.TypeOf(err)))
	}
	attrs := metric.WithAttributes(
		attribute.String("command", name),
		attribute.String("status", status),
	)
	metrics.CommandsTotal.Add(ctx, 1, attrs)
	metrics.CommandDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)

	if err == nil {
		return nil
	}

	reply, classified := ReplyForError(err)
	if classified {
		slog.InfoContext(ctx, "Command rejected", "command", name, "chat_id", cmd.ChatID, "reason", err.Error())
	} else {
		slog.ErrorContext(ctx, "Something went wrong when trying to handle a command",
			"command", name,
			"chat_id", cmd.ChatID,
			"update_id", cmd.UpdateID,
			"args", cmd.Args,
			"error", err,
			logger.WithTraceContext(ctx),
		)
		sentry.CaptureException(ctx, err, map[string]string{"command": name})
	}

	if sendErr := h.sender.Send(ctx, cmd.ChatID, reply); sendErr != nil {
		// A redelivered update would repeat the replies that already went out.
		var partial *partialDeliveryError
		if stderrors.As(err, &partial) {
			slog.WarnContext(ctx, "Dropping command after a partial reply",
				"command", name,
				"chat_id", cmd.ChatID,
				"sent", partial.sent,
				"error", sendErr,
			)
			return nil
		}
		return fmt.Errorf("failed to send error reply for /%s: %w", name, sendErr)
	}
	return nil
}

// partialDeliveryError is a command failure after some replies were delivered.
type partialDeliveryError struct {
	sent int
	err  error
}

func (e *partialDeliveryError) Error() string {
	return fmt.Sprintf("failed after %d replies: %v", e.sent, e.err)
}

func (e *partialDeliveryError) Unwrap() error {
	return e.err
}

func (h *Handler) run(ctx context.Context, cmd Command) error {
	switch strings.ToLower(cmd.Name) {
	case CommandStart:
		return h.sender.Send(ctx, cmd.ChatID, Reply{Text: startText})
	case CommandHelp:
		return h.sender.Send(ctx, cmd.ChatID, Reply{Text: helpText})
	case CommandRecipe:
		return h.recipesForIngredients(ctx, cmd)
	case CommandRandom:
		return h.randomRecipe(ctx, cmd)
	case CommandHappyHour:
		return h.randomBeverage(ctx, cmd)
	case CommandTaco:
		return h.sender.Send(ctx, cmd.ChatID, Reply{Text: tacoText, ParseMode: ParseModeMarkdownV2})
	default:
		return h.sender.Send(ctx, cmd.ChatID, Reply{Text: unknownText})
	}
}

func (h *Handler) recipesForIngredients(ctx context.Context, cmd Command) error {
	ingredients, err := validation.ParseIngredients(cmd.Args)
	if err != nil {
		return err
	}

	ids, err := h.provider.SearchIDsByIngredients(ctx, ingredients, h.opts.RecipeLimit)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.NewNoRecipesFoundError(ingredients)
	}

	recipes, err := h.provider.RecipesByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i, r := range recipes {
		if err := h.sendRecipe(ctx, cmd.ChatID, r); err != nil {
			if i > 0 {
				return &partialDeliveryError{sent: i, err: err}
			}
			return err
		}
	}
	return nil
}

func (h *Handler) randomRecipe(ctx context.Context, cmd Command) error {
	tags, err := validation.ParseTags(cmd.Args, h.opts.Tags)
	if err != nil {
		return err
	}

	r, err := h.provider.RandomRecipe(ctx, tags)
	if err != nil {
		return err
	}
	return h.sendRecipe(ctx, cmd.ChatID, *r)
}

func (h *Handler) randomBeverage(ctx context.Context, cmd Command) error {
	id, err := h.provider.RandomAlcoholicBeverageID(ctx)
	if err != nil {
		return err
	}

	recipes, err := h.provider.RecipesByIDs(ctx, []recipe.ID{id})
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		return errors.NewProviderError(fmt.Sprintf("no recipe returned for beverage %d", id), "EMPTY_RESPONSE", nil)
	}
	return h.sendRecipe(ctx, cmd.ChatID, recipes[0])
}

func (h *Handler) sendRecipe(ctx context.Context, chatID int64, r recipe.Recipe) error {
	slog.InfoContext(ctx, "Formatting the recipe", "title", r.Title, "recipe_id", r.ID)

	formatted := message.Format(r, h.opts.MessageLimit)
	if formatted.Mode == message.LinkFallback {
		slog.InfoContext(ctx, "Recipe too long, sending a link instead", "recipe_id", r.ID)
	}
	metrics.MessagesFormattedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", formatted.Mode.String()),
	))

	if err := h.sender.Send(ctx, chatID, ReplyFromFormatted(formatted)); err != nil {
		return fmt.Errorf("failed to send recipe %d: %w", r.ID, err)
	}
	return nil
}

// metricName bounds the command attribute to the known commands.
func metricName(name string) string {
	switch name = strings.ToLower(name); name {
	case CommandStart, CommandHelp, CommandRecipe, CommandRandom, CommandHappyHour, CommandTaco:
		return name
	default:
		return "unknown"
	}
}

// OptionsFromConfig maps the bot section of the configuration to handler options.
// An empty allow-list keeps the built-in tag vocabulary.
func OptionsFromConfig(cfg config.BotConfig) Options {
	tags := cfg.AllowedTags
	if len(tags) == 0 {
		tags = validation.DefaultTags()
	}
	return Options{
		RecipeLimit:  cfg.RecipeLimit,
		MessageLimit: cfg.MessageCharLimit,
		Tags:         validation.NewTagSet(tags),
	}
}
