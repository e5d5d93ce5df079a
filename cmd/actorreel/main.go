package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ivlev/actorreel/internal/config"
	"github.com/ivlev/actorreel/internal/engine"
	"github.com/ivlev/actorreel/internal/scroller"
	"github.com/ivlev/actorreel/internal/system"
)

// version задаётся при сборке: -ldflags "-X main.version=..."
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "actorreel",
		Short: "Инфографика карьеры актёра и вертикальное видео с прокруткой",
		Long: `actorreel собирает карточки актёра и пяти ключевых фильмов в одну
длинную инфографику и превращает её в видео с прокруткой, комментариями
и фоновой музыкой.

Examples:
  # Инфографика и видео по данным из сети
  actorreel build "Brad Pitt"

  # Без сети, из сохранённого файла
  actorreel build --offline --data data/brad_pitt.yaml

  # Видео из готовой инфографики
  actorreel video "infographic images/Brad Pitt infographic.jpg" --motion full_pause

  # Пакетная обработка со сменой режима прокрутки
  actorreel batch --list actors.txt --motion cycle`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				log.Printf("[!] Не удалось прочитать .env: %v", err)
			}
			system.InitResourceLimits()
		},
	}

	buildCmd = &cobra.Command{
		Use:   "build [actor...]",
		Short: "Собрать инфографику и видео",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd, args)
			if err != nil {
				return err
			}
			return runProject(cmd.Context(), cmd, cfg)
		},
	}

	imageCmd = &cobra.Command{
		Use:   "image [actor...]",
		Short: "Собрать только инфографику",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd, args)
			if err != nil {
				return err
			}
			cfg.SkipVideo = true
			return runProject(cmd.Context(), cmd, cfg)
		},
	}

	videoCmd = &cobra.Command{
		Use:   "video <infographic.jpg>",
		Short: "Сделать видео из готовой инфографики",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.Motion == "cycle" {
				return fmt.Errorf("--motion cycle работает только для нескольких актёров")
			}
			actor, _ := cmd.Flags().GetString("actor")
			prepareEncoder(cfg)

			out, err := engine.VideoFromImage(cmd.Context(), cfg, args[0], actor)
			if err != nil {
				return err
			}
			fmt.Printf("[+++] Успех! Результат: %s\n", out)
			return nil
		},
	}

	batchCmd = &cobra.Command{
		Use:   "batch [actor...]",
		Short: "Обработать список актёров",
		Long: `Обрабатывает актёров из аргументов, из файла со списком имён
(--list, по одному на строку, строки с # пропускаются) и из папки с файлами
данных (--data-dir). Ошибка одного актёра не останавливает пакет.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd, args)
			if err != nil {
				return err
			}

			if list, _ := cmd.Flags().GetString("list"); list != "" {
				names, err := readActorList(list)
				if err != nil {
					return err
				}
				cfg.Actors = append(cfg.Actors, names...)
			}
			if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
				files, err := system.FindFiles(dir, ".yaml", ".yml")
				if err != nil {
					return err
				}
				cfg.DataFiles = append(cfg.DataFiles, files...)
			}
			return runProject(cmd.Context(), cmd, cfg)
		},
	}
)

func init() {
	def := config.Default()
	pf := rootCmd.PersistentFlags()

	pf.String("style", "", "YAML со стилем (шрифт, цвета, масштаб текста, шаблон)")
	pf.StringSlice("data", nil, "Файл данных актёра (YAML), можно несколько")
	pf.String("save-data", "", "Папка для сохранения собранных данных актёров")
	pf.Bool("offline", false, "Не обращаться к сети, только файлы данных")

	pf.String("image-dir", def.OutputImageDir, "Папка для инфографики")
	pf.String("video-dir", def.OutputVideoDir, "Папка для видео")
	pf.StringP("output", "o", "", "Путь к видео (только для одного актёра)")
	pf.String("plan-out", "", "Папка для YAML-планов прокрутки")
	pf.String("headshots", def.HeadshotDir, "Папка с фотографиями актёров")
	pf.String("sounds", def.SoundDir, "Папка с комментариями и фоновой музыкой")
	pf.String("background", "", "Фоновая музыка (по умолчанию: <sounds>/background.*)")

	pf.String("preset", "9:16", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	pf.Int("width", 0, "Ширина кадра (перекрывает пресет)")
	pf.Int("height", 0, "Высота кадра (перекрывает пресет)")
	pf.Int("fps", def.FPS, "FPS")
	pf.Float64("duration", def.Duration, "Длительность видео в секундах")
	pf.String("motion", def.Motion, fmt.Sprintf("Режим прокрутки: %s или cycle", motionNames()))
	pf.Int("pause-frames", def.PauseFrames, "Длина паузы для lerp_pause, кадров")
	pf.Int("full-pause-frames", def.FullPauseFrames, "Длина паузы для full_pause, кадров")
	pf.Float64("slow-zone", def.SlowZone, "Зона замедления перед центром карточки, пикселей")

	pf.Int("workers", runtime.NumCPU(), "Потоки")
	pf.Int("dpi", def.DPI, "DPI для PDF-шаблона")
	pf.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	pf.Bool("stats", false, "Показать отчёт о производительности и дописать его в benchmark.log")

	videoCmd.Flags().String("actor", "", "Имя актёра для имени файла (по умолчанию из имени инфографики)")

	batchCmd.Flags().String("list", "", "Файл со списком актёров")
	batchCmd.Flags().String("data-dir", "", "Папка с файлами данных актёров")

	rootCmd.AddCommand(buildCmd, imageCmd, videoCmd, batchCmd)
}

func motionNames() string {
	names := make([]string, len(scroller.Motions))
	for i, m := range scroller.Motions {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func configFromFlags(cmd *cobra.Command, actors []string) (*config.Config, error) {
	f := cmd.Flags()
	cfg := config.Default()
	cfg.BuildVersion = version
	cfg.Actors = actors
	cfg.OMDbAPIKey = os.Getenv("OMDB_API_KEY")

	cfg.DataFiles, _ = f.GetStringSlice("data")
	cfg.SaveData, _ = f.GetString("save-data")
	cfg.Offline, _ = f.GetBool("offline")
	cfg.OutputImageDir, _ = f.GetString("image-dir")
	cfg.OutputVideoDir, _ = f.GetString("video-dir")
	cfg.OutputVideo, _ = f.GetString("output")
	cfg.PlanOutput, _ = f.GetString("plan-out")
	cfg.HeadshotDir, _ = f.GetString("headshots")
	cfg.SoundDir, _ = f.GetString("sounds")
	cfg.BackgroundAudio, _ = f.GetString("background")

	preset, _ := f.GetString("preset")
	cfg.ApplyPreset(preset)
	if w, _ := f.GetInt("width"); w > 0 {
		cfg.Width = w
	}
	if h, _ := f.GetInt("height"); h > 0 {
		cfg.Height = h
	}
	cfg.FPS, _ = f.GetInt("fps")
	cfg.Duration, _ = f.GetFloat64("duration")
	cfg.Motion, _ = f.GetString("motion")
	cfg.PauseFrames, _ = f.GetInt("pause-frames")
	cfg.FullPauseFrames, _ = f.GetInt("full-pause-frames")
	cfg.SlowZone, _ = f.GetFloat64("slow-zone")
	cfg.Workers, _ = f.GetInt("workers")
	cfg.DPI, _ = f.GetInt("dpi")
	cfg.Quality, _ = f.GetInt("quality")
	cfg.ShowStats, _ = f.GetBool("stats")

	if cfg.Motion != "cycle" {
		if _, err := scroller.ParseMotion(cfg.Motion); err != nil {
			return nil, err
		}
	}
	if cfg.FPS <= 0 || cfg.Duration <= 0 || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("некорректные параметры видео: %dx%d @ %d FPS, %.1fs", cfg.Width, cfg.Height, cfg.FPS, cfg.Duration)
	}
	return cfg, nil
}

func loadStyle(cmd *cobra.Command) (config.Style, error) {
	path, _ := cmd.Flags().GetString("style")
	if path == "" {
		return config.DefaultStyle(), nil
	}
	style, err := config.LoadStyle(path)
	if err != nil {
		return config.Style{}, fmt.Errorf("стиль %s: %w", path, err)
	}
	fmt.Printf("[*] Используется стиль: %s\n", path)
	return style, nil
}

// prepareEncoder выбирает энкодер и качество по умолчанию для него.
func prepareEncoder(cfg *config.Config) {
	cfg.VideoEncoder = system.GetBestH264Encoder()
	if cfg.VideoEncoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
	}
	if cfg.Quality == 0 {
		cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
	}
}

func runProject(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	style, err := loadStyle(cmd)
	if err != nil {
		return err
	}
	if !cfg.SkipVideo {
		prepareEncoder(cfg)
	}

	project, err := engine.NewProject(cfg, style)
	if err != nil {
		return err
	}
	defer project.Close()

	return project.Run(ctx)
}

func readActorList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("[-] Ошибка: %v", err)
		os.Exit(1)
	}
}
