package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/scene2video/internal/analyzer"
	"github.com/ivlev/scene2video/internal/animation"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/director"
	"github.com/ivlev/scene2video/internal/engine"
	"github.com/ivlev/scene2video/internal/preview"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

// buildVersion is set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

const (
	scenariosDir = "scenarios"
	outputDir    = "output"
	inputDir     = "input"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Использование: scene2video <команда> [флаги] [сценарий.yaml]

Команды:
  export  отрендерить сценарий в видео, GIF или последовательность PNG
  play    открыть окно предпросмотра с горячей перезагрузкой
  check   проверить сценарий без рендера
  tour    создать сценарий с обзором камерой по картинке или странице PDF

Без пути берётся самый свежий сценарий из %s/.
`, scenariosDir)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "export":
		err = runExport(args)
	case "play":
		err = runPlay(args)
	case "check":
		err = runCheck(args)
	case "tour":
		err = runTour(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "[-] Неизвестная команда: %s\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Ошибка: %v\n", err)
		os.Exit(1)
	}
}

// common holds the flags every command shares.
type common struct {
	configPath string
	workers    int
	encoder    string
	quality    int
	debug      bool
	stats      bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML с настройками (по умолчанию встроенные)")
	fs.IntVar(&c.workers, "workers", 0, "Потоки записи кадров (0 - из конфига)")
	fs.StringVar(&c.encoder, "encoder", "", "Видеокодек ffmpeg: auto, libx264, h264_videotoolbox, h264_nvenc")
	fs.IntVar(&c.quality, "quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	fs.BoolVar(&c.debug, "debug", false, "Подробный лог")
	fs.BoolVar(&c.stats, "stats", false, "Печатать отчёт о производительности")
}

// load builds the configuration: file, then flags on top.
func (c *common) load(ctx context.Context) (*config.Config, error) {
	setupLogging(c.debug)

	cfg := config.Default()
	if c.configPath != "" {
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.BuildVersion = buildVersion
	cfg.Debug = cfg.Debug || c.debug
	cfg.ShowStats = cfg.ShowStats || c.stats
	if c.workers > 0 {
		cfg.Workers = c.workers
	}
	if c.encoder != "" {
		cfg.VideoEncoder = c.encoder
	}
	if cfg.VideoEncoder == "auto" {
		cfg.VideoEncoder = system.GetBestH264Encoder(ctx, cfg.FFmpegPath)
		if cfg.VideoEncoder != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
		}
	}
	if c.quality > 0 {
		cfg.Quality = c.quality
	} else if c.encoder != "" {
		switch cfg.VideoEncoder {
		case "h264_videotoolbox":
			cfg.Quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			cfg.Quality = 28 // Эквивалент CRF для NVENC
		default:
			cfg.Quality = 23 // Стандартный CRF для x264
		}
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func scenarioPath(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	latest, err := director.FindLatestScenario(scenariosDir)
	if err != nil {
		return "", fmt.Errorf("%v. Положите сценарий в %s/", err, scenariosDir)
	}
	fmt.Printf("[*] Выбран сценарий: %s\n", latest)
	return latest, nil
}

func defaultOutput(scenario, ext string) string {
	base := strings.TrimSuffix(filepath.Base(scenario), filepath.Ext(scenario))
	cleanName := strings.ReplaceAll(base, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s%s", cleanName, timestamp, ext))
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var c common
	c.register(fs)
	output := fs.String("output", "", "Путь к результату: .mp4/.mov/.mkv/.webm, .gif или папка для PNG (если пусто, генерируется в output/)")
	format := fs.String("format", ".mp4", "Расширение результата, если -output не задан")
	scale := fs.Float64("scale", 0, "Масштаб кадра относительно размера сценария (0 - из конфига)")
	finitize := fs.Bool("finitize", false, "Заменять бесконечные паузы на final_delay кадров")
	benchLog := fs.String("benchmark-log", "", "Дописывать строку отчёта в этот файл (вместе с -stats)")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system.InitResourceLimits()
	cfg, err := c.load(ctx)
	if err != nil {
		return err
	}
	path, err := scenarioPath(fs.Arg(0))
	if err != nil {
		return err
	}
	anim, err := director.Load(path, cfg)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = defaultOutput(path, *format)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	enc, err := video.ForPath(out)
	if err != nil {
		return err
	}

	s := *scale
	if s <= 0 {
		s = cfg.Scale
	}
	project := engine.NewProject(anim.Config(), anim, enc)
	project.Finitize = *finitize
	project.BenchmarkLog = *benchLog
	stats, err := project.Run(ctx, out, s)
	if err != nil {
		return fmt.Errorf("экспорт: %w", err)
	}

	fmt.Printf("[*] Кадров: %d (уникальных %d), %dx%d, рендер %.1f fps\n", stats.Frames, stats.Steps, stats.Width, stats.Height, stats.FPS())
	fmt.Printf("[+++] Успех! Результат: %s\n", out)
	return nil
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	var c common
	c.register(fs)
	scale := fs.Float64("scale", 1, "Масштаб окна")
	loop := fs.Bool("loop", true, "Повторять с начала")
	hud := fs.Bool("hud", true, "Показывать номер кадра и состояние")
	watch := fs.Bool("watch", true, "Перезагружать при изменении сценариев в папке")
	fs.Parse(args)

	cfg, err := c.load(context.Background())
	if err != nil {
		return err
	}
	path, err := scenarioPath(fs.Arg(0))
	if err != nil {
		return err
	}
	anim, err := director.Load(path, cfg)
	if err != nil {
		return err
	}

	opts := preview.Options{
		Scale: *scale,
		Loop:  *loop,
		HUD:   *hud,
		Title: "scene2video: " + filepath.Base(path),
		Reload: func() (*animation.Animation, error) {
			return director.Load(path, cfg)
		},
	}
	if *watch {
		opts.Watch = []string{filepath.Dir(path)}
	}
	fmt.Println("[*] Пробел - пауза, стрелки - по кадру, Home - сначала, R - перезагрузка, Q - выход")
	return preview.Play(anim, anim.Config(), opts)
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var c common
	c.register(fs)
	fs.Parse(args)

	cfg, err := c.load(context.Background())
	if err != nil {
		return err
	}
	path, err := scenarioPath(fs.Arg(0))
	if err != nil {
		return err
	}
	anim, err := director.Load(path, cfg)
	if err != nil {
		return err
	}
	if err := anim.SanityCheck(); err != nil {
		return err
	}
	frames, err := anim.Length()
	if err != nil {
		return err
	}
	seconds, err := anim.Seconds()
	if err != nil {
		return err
	}

	fmt.Printf("[*] Слоёв: %d, кадров: %d, %.2fs при %d fps\n", len(anim.Layers), frames, seconds, anim.FPS)
	if _, err := anim.Plan(); err != nil {
		fmt.Printf("[!] %v: для экспорта нужен -finitize\n", err)
	}
	fmt.Println("[+] Сценарий корректен")
	return nil
}

// runTour writes a scenario that shows one picture and tours the regions the
// analyzer finds on it.
func runTour(args []string) error {
	fs := flag.NewFlagSet("tour", flag.ExitOnError)
	var c common
	c.register(fs)
	input := fs.String("input", "", "Картинка или PDF (по умолчанию: самый свежий файл в input/)")
	page := fs.Int("page", 0, "Страница PDF")
	duration := fs.Float64("duration", 10, "Длительность обзора в секундах")
	width := fs.Int("width", 1280, "Ширина")
	height := fs.Int("height", 720, "Высота")
	detector := fs.String("detector", "contrast", "Анализатор: "+strings.Join(analyzer.Variants, ", "))
	maxRegions := fs.Int("max-regions", 8, "Сколько областей показывать (0 - все)")
	output := fs.String("output", "", "Путь к сценарию (если пусто, генерируется в scenarios/)")
	fs.Parse(args)

	cfg, err := c.load(context.Background())
	if err != nil {
		return err
	}

	inputPath := *input
	if inputPath == "" {
		latest, err := system.FindLatest(inputDir, ".png", ".jpg", ".jpeg", ".pdf")
		if err != nil {
			return fmt.Errorf("%v. Положите картинку или PDF в %s/", err, inputDir)
		}
		inputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}
	out := *output
	if out == "" {
		out = director.GenerateScenarioPath(scenariosDir)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(filepath.Dir(out))
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absOut, absInput)
	if err != nil {
		rel = absInput
	}

	sc := &director.Scenario{
		Version: "1.0",
		Width:   *width,
		Height:  *height,
		Layers: []director.Layer{{
			Name: "slide",
			Tour: &director.Tour{
				Picture:    "page",
				Detector:   *detector,
				MaxRegions: *maxRegions,
				Duration:   *duration,
			},
			Actors: []director.Actor{{
				Name:  "page",
				Shape: director.Shape{Type: "picture", Source: rel, Page: *page, Width: float64(*width)},
			}},
		}},
	}

	anim, err := director.Build(sc, filepath.Dir(out), cfg)
	if err != nil {
		return err
	}
	keys := anim.Layers[0].Camera.Keyframes()
	fmt.Printf("[*] Остановок камеры: %d, до кадра %d\n", len(keys), keys[len(keys)-1].Index)

	if err := director.WriteScenario(sc, out); err != nil {
		return err
	}
	fmt.Printf("[+] Сценарий сохранён: %s\n", out)
	return nil
}
