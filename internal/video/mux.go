package video

import (
	"fmt"
	"log"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// CommentaryVolume поднимает комментарий над фоновой музыкой.
const CommentaryVolume = 1.5

type MuxParams struct {
	VideoPath       string
	BackgroundAudio string
	Commentary      string
	Duration        float64
	Output          string
}

// Mux собирает итоговый файл: видео без перекодирования, фоновая музыка
// в цикле до длины ролика и комментарий поверх неё. Отсутствующие
// аудиодорожки пропускаются.
func Mux(p MuxParams) error {
	return muxStream(p).OverWriteOutput().ErrorToStdOut().Run()
}

func muxStream(p MuxParams) *ffmpeg.Stream {
	video := ffmpeg.Input(p.VideoPath).Video()

	var tracks []*ffmpeg.Stream
	if p.BackgroundAudio != "" {
		if _, err := os.Stat(p.BackgroundAudio); err == nil {
			bg := ffmpeg.Input(p.BackgroundAudio, ffmpeg.KwArgs{"stream_loop": -1}).Audio().
				Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": fmt.Sprintf("%.3f", p.Duration)})
			tracks = append(tracks, bg)
		} else {
			log.Printf("[!] Фоновая музыка не найдена: %s", p.BackgroundAudio)
		}
	}
	if p.Commentary != "" {
		c := ffmpeg.Input(p.Commentary).Audio().
			Filter("volume", ffmpeg.Args{fmt.Sprintf("%.1f", CommentaryVolume)})
		tracks = append(tracks, c)
	}

	kw := ffmpeg.KwArgs{"c:v": "copy", "t": fmt.Sprintf("%.3f", p.Duration)}
	streams := []*ffmpeg.Stream{video}

	switch len(tracks) {
	case 0:
	case 1:
		streams = append(streams, tracks[0])
		kw["c:a"] = "aac"
	default:
		mixed := ffmpeg.Filter(tracks, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
			"inputs":             len(tracks),
			"duration":           "longest",
			"dropout_transition": 0,
			"normalize":          0,
		})
		streams = append(streams, mixed)
		kw["c:a"] = "aac"
	}

	return ffmpeg.Output(streams, p.Output, kw)
}
