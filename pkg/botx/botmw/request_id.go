package botmw

import (
	"context"
	"fmt"

	"github.com/Semior001/headlines/pkg/botx"
	"github.com/Semior001/headlines/pkg/logx"
	"github.com/google/uuid"
)

// RequestID tags every request with a fresh id, which the logger
// picks up from the context.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			return next(logx.ContextWithRequestID(ctx, uuid.NewString()), req)
		}
	}
}

const genericFailureText = "Something went wrong. Please, ask admin for help."

// AppendRequestIDOnError tags the replies to a failed request with its id,
// so that the user is able to refer to it. Responses to other chats are
// left as is. If the handler failed without replying to the requester,
// a generic reply is added.
func AppendRequestIDOnError() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			resps, err := next(ctx, req)
			if err == nil {
				return resps, nil
			}

			id, _ := logx.RequestIDFromContext(ctx)
			footer := fmt.Sprintf("\n\nRequest ID: `%s`", id)

			replied := false
			for i := range resps {
				if resps[i].ChatID != req.Chat.ID {
					continue
				}
				resps[i].Text += footer
				replied = true
			}

			if !replied {
				resps = append(resps, botx.Response{
					ChatID: req.Chat.ID,
					Text:   genericFailureText + footer,
				})
			}

			return resps, err
		}
	}
}
